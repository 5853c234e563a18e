package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"pypln-web/internal/model"
	"pypln-web/internal/properties"
)

type DocumentSource interface {
	ListNotIndexed() ([]model.Document, error)
	MarkIndexed(id uint) error
}

type Report struct {
	Skipped bool
	Indexed []uint
	Pending []uint
}

// Indexer promotes documents whose extracted text is available into the
// search index. Documents without text stay pending for the next run.
type Indexer struct {
	docs   DocumentSource
	index  Index
	opener properties.Opener
	lock   Locker
	out    io.Writer
	log    *slog.Logger
}

func NewIndexer(docs DocumentSource, index Index, opener properties.Opener, lock Locker, out io.Writer, log *slog.Logger) *Indexer {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{docs: docs, index: index, opener: opener, lock: lock, out: out, log: log}
}

func (ix *Indexer) Run(ctx context.Context) (*Report, error) {
	acquired, err := ix.lock.TryAcquire(ctx)
	if err != nil {
		return nil, err
	}
	if !acquired {
		fmt.Fprintln(ix.out, "Another indexing process is running. Exiting.")
		return &Report{Skipped: true}, nil
	}
	defer func() {
		if err := ix.lock.Release(context.WithoutCancel(ctx)); err != nil {
			ix.log.Error("release index lock failed", "error", err)
		}
	}()

	docs, err := ix.docs.ListNotIndexed()
	if err != nil {
		return nil, err
	}
	report := &Report{}
	if len(docs) == 0 {
		fmt.Fprintln(ix.out, "All documents are already indexed.")
		return report, nil
	}
	fmt.Fprintf(ix.out, "Documents to be indexed: %d\n", len(docs))

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		doc := &docs[i]
		text, ready, err := ix.text(ctx, doc)
		if err != nil {
			return report, err
		}
		if !ready {
			report.Pending = append(report.Pending, doc.ID)
			fmt.Fprintf(ix.out, "  Not indexed (text not ready) id=%d, filename=%s\n", doc.ID, doc.Filename)
			continue
		}
		if err := ix.index.Add(doc.ID, doc.Filename, text); err != nil {
			return report, err
		}
		if err := ix.docs.MarkIndexed(doc.ID); err != nil {
			return report, err
		}
		report.Indexed = append(report.Indexed, doc.ID)
		fmt.Fprintf(ix.out, "  Indexed id=%d, filename=%s\n", doc.ID, doc.Filename)

		if err := ix.lock.Refresh(ctx); err != nil {
			return report, err
		}
	}
	ix.log.Info("index updated", "indexed", len(report.Indexed), "pending", len(report.Pending))
	return report, nil
}

func (ix *Indexer) text(ctx context.Context, doc *model.Document) (string, bool, error) {
	proxy, err := doc.Properties(ix.opener)
	if err != nil {
		return "", false, err
	}
	keys, err := proxy.Keys(ctx)
	if err != nil {
		if errors.Is(err, properties.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if !slices.Contains(keys, "text") {
		return "", false, nil
	}
	var text string
	if err := proxy.Decode(ctx, "text", &text); err != nil {
		if errors.Is(err, properties.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return text, true, nil
}
