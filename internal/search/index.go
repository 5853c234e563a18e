package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

const ContentField = "content"

// DefaultOpenTimeout bounds the wait for the index file lock.
const DefaultOpenTimeout = 5 * time.Second

// ErrIndexBusy means another process holds the index open.
var ErrIndexBusy = errors.New("search index is in use by another process")

type Hit struct {
	DocumentID uint
	Fragments  []string
}

// Index is the full text index holding the extracted text of documents.
type Index interface {
	Add(documentID uint, filename, content string) error
	Search(q string) ([]Hit, error)
	Close() error
}

type BleveIndex struct {
	index bleve.Index
}

// OpenBleve opens the index at path, creating it on first use. The index
// file is locked for the lifetime of the handle; when another process holds
// it, OpenBleve gives up after timeout with ErrIndexBusy.
func OpenBleve(path string, timeout time.Duration) (*BleveIndex, error) {
	if timeout <= 0 {
		timeout = DefaultOpenTimeout
	}
	kvconfig := map[string]interface{}{"bolt_timeout": timeout.String()}

	idx, err := bleve.OpenUsing(path, kvconfig)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.NewUsing(path, documentMapping(), bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, kvconfig)
	}
	if err != nil {
		// bolt reports a held file lock as a plain timeout.
		if strings.Contains(err.Error(), "timeout") {
			return nil, fmt.Errorf("open search index %s failed: %w", path, ErrIndexBusy)
		}
		return nil, fmt.Errorf("open search index failed: %w", err)
	}
	return &BleveIndex{index: idx}, nil
}

func NewMemOnly() (*BleveIndex, error) {
	idx, err := bleve.NewMemOnly(documentMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index failed: %w", err)
	}
	return &BleveIndex{index: idx}, nil
}

func documentMapping() mapping.IndexMapping {
	id := bleve.NewKeywordFieldMapping()
	filename := bleve.NewTextFieldMapping()
	content := bleve.NewTextFieldMapping()
	content.Analyzer = "standard"

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("id", id)
	doc.AddFieldMappingsAt("filename", filename)
	doc.AddFieldMappingsAt(ContentField, content)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

func (b *BleveIndex) Add(documentID uint, filename, content string) error {
	id := strconv.FormatUint(uint64(documentID), 10)
	err := b.index.Index(id, map[string]any{
		"id":         id,
		"filename":   filename,
		ContentField: content,
	})
	if err != nil {
		return fmt.Errorf("index document %d failed: %w", documentID, err)
	}
	return nil
}

// Search matches every term of q against the content field and returns all
// hits with highlighted fragments.
func (b *BleveIndex) Search(q string) ([]Hit, error) {
	match := bleve.NewMatchQuery(q)
	match.SetField(ContentField)
	match.SetOperator(query.MatchQueryOperatorAnd)

	count, err := b.index.Search(bleve.NewSearchRequestOptions(match, 0, 0, false))
	if err != nil {
		return nil, fmt.Errorf("search index failed: %w", err)
	}
	if count.Total == 0 {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(match, int(count.Total), 0, false)
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField(ContentField)
	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search index failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{DocumentID: uint(id), Fragments: h.Fragments[ContentField]})
	}
	return hits, nil
}

func (b *BleveIndex) Close() error {
	return b.index.Close()
}
