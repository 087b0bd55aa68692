package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// watchCommand creates the "watch" command.
func (c *CLI) watchCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Import a template file and keep the document in sync with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			logger := loggerFor(ctx, "")

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			rt, err := openRuntime(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, rt.shutdown())
			}()

			doc, err := rt.openDocument(ctx, "", args[0], name)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			if err := rt.startAutosave(ctx); err != nil {
				return err
			}
			if err := rt.watch(ctx, args[0]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Watching %s", args[0])
			printDetail(out, "Document: %s (%s)", doc.Name, doc.ID)

			<-ctx.Done()
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "document name (default: file name)")
	return cmd
}
