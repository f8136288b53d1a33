package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize corkboard storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attach()
			if err != nil {
				return err
			}
			dataDir := backend.DataDir()
			if err := backend.Detach(); err != nil {
				return systemError(fmt.Errorf("finalize storage: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Corkboard initialized\nconfig: %s\ndata:   %s\n", a.configDir, dataDir)
			return nil
		},
	}
}
