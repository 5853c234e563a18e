package app

import (
	"errors"
	"strconv"
)

const DefaultPerPage = 10

var (
	ErrInvalidPage = errors.New("Invalid page")
	ErrEmptyPage   = errors.New("This page does not exist")
)

// Order is a resolved document sort key.
type Order struct {
	Key    string
	Column string
	Desc   bool
}

var sortOrders = map[string]Order{
	"filename":      {Key: "filename", Column: "blob"},
	"filename_desc": {Key: "filename_desc", Column: "blob", Desc: true},
	"date":          {Key: "date", Column: "uploaded_at"},
	"date_desc":     {Key: "date_desc", Column: "uploaded_at", Desc: true},
	"corpus":        {Key: "corpus", Column: "corpus_id"},
	"corpus_desc":   {Key: "corpus_desc", Column: "corpus_id", Desc: true},
}

// SortOrder maps a sort_by value to a column. Unknown keys sort by blob name.
func SortOrder(key string) Order {
	if o, ok := sortOrders[key]; ok {
		return o
	}
	return Order{Key: "filename", Column: "blob"}
}

// ParsePerPage falls back to DefaultPerPage for anything but a positive
// integer.
func ParsePerPage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultPerPage
	}
	return n
}

type Page struct {
	Number  int
	PerPage int
	Total   int64
	Pages   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.Pages }
func (p Page) Previous() int     { return p.Number - 1 }
func (p Page) Next() int         { return p.Number + 1 }

// FirstPage is the page requested when the parameter is absent.
const FirstPage = "1"

// Paginate resolves raw against total items. raw is a page number or "last";
// anything else, including an empty value, is ErrInvalidPage. The first page
// always exists, even when there is nothing to show.
func Paginate(raw string, total int64, perPage int) (Page, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages == 0 {
		pages = 1
	}

	var number int
	switch raw {
	case "last":
		number = pages
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, ErrInvalidPage
		}
		number = n
	}
	if number < 1 || number > pages {
		return Page{}, ErrEmptyPage
	}
	return Page{Number: number, PerPage: perPage, Total: total, Pages: pages}, nil
}
