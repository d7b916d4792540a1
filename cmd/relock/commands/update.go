package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <package>@<version>",
		Short: "Bump one dependency and re-resolve only its subgraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, constraint, err := splitSpec(args[0])
			if err != nil {
				return err
			}
			workspace, err := cmd.Flags().GetString("workspace")
			if err != nil {
				return err
			}
			d, err := c.app.Update(cmd.Context(), c.projectDir(cmd), workspace, name, constraint)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.String())
			return nil
		},
	}
	cmd.Flags().StringP("workspace", "w", "", "Workspace member declaring the dependency (path or name); empty targets the root")
	return cmd
}

// splitSpec splits "name@constraint" at the last @ so scoped package names
// like @scope/pkg@1.2.3 parse correctly.
func splitSpec(spec string) (string, string, error) {
	idx := strings.LastIndex(spec, "@")
	if idx <= 0 || idx == len(spec)-1 {
		return "", "", zerr.With(zerr.New("expected <package>@<version>"), "argument", spec)
	}
	return spec[:idx], spec[idx+1:], nil
}
