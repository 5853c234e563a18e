package pipeline

import (
	"context"
	"fmt"
	"io"

	"pypln-web/internal/model"
)

// DocumentSource lists every stored document for a resend.
type DocumentSource interface {
	Count() (int64, error)
	Each(batchSize int, fn func(doc *model.Document) error) error
}

const resendBatchSize = 500

// ResendPipelines queues the default pipeline again for every document,
// which reprocesses the whole collection after a pipeline upgrade.
func (c *Client) ResendPipelines(ctx context.Context, docs DocumentSource, out io.Writer) (int, error) {
	total, err := docs.Count()
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(out, "Sending pipelines for %d documents... ", total)

	sent := 0
	err = docs.Each(resendBatchSize, func(doc *model.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.CreatePipeline(ctx, Job{FileID: doc.FileID, DocumentID: doc.ID}); err != nil {
			return err
		}
		sent++
		return nil
	})
	if err != nil {
		fmt.Fprintln(out)
		return sent, err
	}
	fmt.Fprintln(out, "Done.")
	return sent, nil
}
