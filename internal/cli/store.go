package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"canvas/internal/domain"
	"canvas/internal/storage"
)

// withDB opens the configured database for the duration of fn.
func (c *CLI) withDB(fn func(db *storage.DB) error) (err error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	db, err := storage.New(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(db)
}

// documentsCommand creates the "documents" command.
func (c *CLI) documentsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs", "ls"},
		Short:   "List stored documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(func(db *storage.DB) error {
				docs, err := storage.NewDocumentStore(db).List()
				if err != nil {
					return err
				}
				if asJSON {
					if docs == nil {
						docs = []storage.DocumentSummary{}
					}
					return writeJSON(cmd, docs)
				}

				out := cmd.OutOrStdout()
				if len(docs) == 0 {
					printInfo(out, "No documents")
					return nil
				}
				for _, d := range docs {
					printKeyValue(out, d.ID[:min(8, len(d.ID))], fmt.Sprintf("%s (%d blocks, %s)", d.Name, d.Blocks, d.UpdatedAt.Local().Format(time.DateTime)))
					if d.SourcePath != "" {
						printDetail(out, "%s", d.SourcePath)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// approvalsCommand creates the "approvals" command.
func (c *CLI) approvalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "approvals",
		Short: "List destructive actions waiting for approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(func(db *storage.DB) error {
				pending, err := storage.NewApprovalStore(db).Pending()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(pending) == 0 {
					printInfo(out, "No pending approvals")
					return nil
				}
				for _, a := range pending {
					printKeyValue(out, a.ID, a.Tool)
					printDetail(out, "%s", a.Description)
				}
				return nil
			})
		},
	}
}

// approveCommand creates "approve" or "reject".
func (c *CLI) approveCommand(approve bool) *cobra.Command {
	use, short, verb := "approve", "Approve a pending destructive action", "Approved"
	if !approve {
		use, short, verb = "reject", "Reject a pending destructive action", "Rejected"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(func(db *storage.DB) error {
				ok, err := storage.NewApprovalStore(db).Resolve(args[0], approve)
				if err != nil {
					return err
				}
				if !ok {
					return domain.NewError(domain.ErrCodeNotFound, "no pending approval %s", args[0])
				}
				printSuccess(cmd.OutOrStdout(), "%s %s", verb, args[0])
				return nil
			})
		},
	}
}
