// Package cli implements the canvas command-line interface.
//
// Commands:
//   - serve: expose a document to AI agents over MCP on stdin/stdout
//   - watch: follow a template file, autosaving it into the document store
//   - validate, bounds, info: inspect template files
//   - documents, approvals, approve, reject: manage the document store
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"canvas/internal/config"
)

const appName = "canvas"

var version = "dev"

// SetVersion sets the version displayed by --version.
func SetVersion(v string) {
	version = v
}

// CLI holds state shared by all commands.
type CLI struct {
	logOut     io.Writer
	configPath string
	verbose    bool
}

// New creates a CLI that logs to logOut. Command output goes to the
// command's output writer.
func New(logOut io.Writer) *CLI {
	return &CLI{logOut: logOut}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Canvas is a headless design-canvas engine",
		Long:         `Canvas keeps design templates (frames, text, images, arrows, drawings) in a document store with undo history and exposes them to AI agents over MCP.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(contextWithLogger(cmd.Context(), newLogger(c.logOut, c.verbose)))
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/canvas/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.boundsCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.documentsCommand())
	root.AddCommand(c.approvalsCommand())
	root.AddCommand(c.approveCommand(true))
	root.AddCommand(c.approveCommand(false))

	return root
}

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// Execute runs the CLI with ctx, logging to stderr.
func Execute(ctx context.Context) error {
	return New(os.Stderr).RootCommand().ExecuteContext(ctx)
}
