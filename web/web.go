// Package web holds the HTML page templates served by the site.
package web

import (
	"embed"
	"html"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var files embed.FS

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

var funcs = template.FuncMap{
	"highlight": Highlight,
	"add":       func(a, b int) int { return a + b },
}

// Templates parses every page. Each page is registered under its file name.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}

// Highlight escapes a search fragment and keeps only the <mark> tags that
// the index added around matches.
func Highlight(fragment string) template.HTML {
	var b strings.Builder
	for {
		i := strings.Index(fragment, markOpen)
		if i < 0 {
			break
		}
		j := strings.Index(fragment[i+len(markOpen):], markClose)
		if j < 0 {
			break
		}
		j += i + len(markOpen)
		b.WriteString(html.EscapeString(fragment[:i]))
		b.WriteString(markOpen)
		b.WriteString(html.EscapeString(fragment[i+len(markOpen) : j]))
		b.WriteString(markClose)
		fragment = fragment[j+len(markClose):]
	}
	b.WriteString(html.EscapeString(fragment))
	return template.HTML(b.String())
}
