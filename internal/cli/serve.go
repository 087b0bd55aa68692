package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "canvas/internal/mcp"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var docID, importPath, name string
	var approvalTable bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a document to AI agents over MCP on stdin/stdout",
		Long: `Serve opens a stored document (--document), imports a template file
(--import) or starts a new one, then exposes it as MCP tools, resources and
prompts on stdin/stdout. Changes are autosaved according to the config.`,
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

			doc, err := rt.openDocument(ctx, docID, importPath, name)
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			logger.Info("serving document", "id", doc.ID, "name", doc.Name)

			if err := rt.startAutosave(ctx); err != nil {
				return err
			}
			if err := rt.watch(ctx, cfg.Watch.Paths...); err != nil {
				return err
			}

			deps := mcpserver.Deps{
				Store:       rt.store,
				Proposals:   rt.proposals,
				Documents:   rt.docs,
				Emitter:     rt.emitter,
				Logger:      loggerFor(ctx, "mcp"),
				AutoApprove: cfg.MCP.AutoApprove,
				Name:        cfg.MCP.Name,
				Version:     cfg.MCP.Version,
			}
			if approvalTable {
				deps.Approvals = rt.approvals
			}
			return mcpserver.New(deps).ServeStdio(ctx)
		},
	}

	cmd.Flags().StringVar(&docID, "document", "", "id of a stored document to open")
	cmd.Flags().StringVar(&importPath, "import", "", "template file to import as a new document")
	cmd.Flags().StringVar(&name, "name", "", "name for a new or imported document")
	cmd.Flags().BoolVar(&approvalTable, "approval-table", true, "resolve destructive tools through the approvals table (see 'canvas approve')")
	cmd.MarkFlagsMutuallyExclusive("document", "import")

	return cmd
}
