package cli

import (
	"github.com/spf13/cobra"
)

func NewResendPipelinesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-pipelines",
		Short: "Queue the analysis pipeline again for every document",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = app.Pipeline.ResendPipelines(cmd.Context(), app.Documents, cmd.OutOrStdout())
			return err
		},
	}
}
