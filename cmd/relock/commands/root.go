// Package commands implements the CLI commands for the relock tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/relock/internal/app"
	"go.trai.ch/relock/internal/core/domain"
)

// CLI represents the command line interface for relock.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Resolve(ctx context.Context, dir string) (domain.Diff, error)
	Update(ctx context.Context, dir, workspace, name, constraint string) (domain.Diff, error)
	Validate(ctx context.Context, dir string) error
	Diff(ctx context.Context, dir string) (domain.Diff, error)
	SetRegistryFile(name string)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "relock",
		Short:         "Deterministic lockfile resolution for npm-style workspaces",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("dir", "C", ".", "Project directory containing package.json")
	rootCmd.PersistentFlags().String("registry", app.DefaultRegistryFile, "Registry snapshot file, relative to the project directory")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		registryFile, err := cmd.Flags().GetString("registry")
		if err != nil {
			return err
		}
		a.SetRegistryFile(registryFile)
		return nil
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newValidateCmd())
	rootCmd.AddCommand(c.newDiffCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

func (c *CLI) projectDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		return "."
	}
	return dir
}
