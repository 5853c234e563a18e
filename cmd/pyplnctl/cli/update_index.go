package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pypln-web/internal/search"
)

type indexRunner interface {
	Run(ctx context.Context) (*search.Report, error)
}

type runRequester interface {
	Request(ctx context.Context) (int64, error)
}

func NewUpdateIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-index",
		Short: "Index documents whose text is ready",
		Long: `Add every document that is not indexed yet and whose extracted text is
available to the search index. Documents still being processed stay pending.
Only one indexing run may hold the lease at a time. When a running server
holds the index, the command asks it to run the update instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			open := func() (indexRunner, error) {
				if err := app.OpenIndex(out); err != nil {
					return nil, err
				}
				return app.Indexer, nil
			}
			return updateIndex(cmd.Context(), out, open, app.IndexRequests)
		},
	}
}

// updateIndex runs the indexer when this process can open the index, and
// otherwise hands the run to the process holding it.
func updateIndex(ctx context.Context, out io.Writer, open func() (indexRunner, error), requests runRequester) error {
	indexer, err := open()
	if errors.Is(err, search.ErrIndexBusy) {
		owners, reqErr := requests.Request(ctx)
		if reqErr != nil {
			return errors.Join(err, reqErr)
		}
		if owners == 0 {
			return err
		}
		fmt.Fprintln(out, "The search index is held by a running server. Requested an update from it.")
		return nil
	}
	if err != nil {
		return err
	}
	_, err = indexer.Run(ctx)
	return err
}
