package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/internal/snapshot"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Commit the data directory to its git history",
		Long: "Commit the JSONL data files to a git repository inside the data\n" +
			"directory, creating it on first use. The SQLite cache is not tracked.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return err
			}
			author := snapshot.Author{
				Name:  a.cfg.GetString(cfgKeySnapshotAuthor),
				Email: a.cfg.GetString(cfgKeySnapshotEmail),
			}
			hash, err := snapshot.Commit(dataDir, message, author)
			if errors.Is(err, snapshot.ErrNothingToSnapshot) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to snapshot.")
				return nil
			}
			if err != nil {
				return systemError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s\n", hash)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.AddCommand(newSnapshotLogCmd(a))
	return cmd
}

func newSnapshotLogCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return err
			}
			entries, err := snapshot.Log(dataDir, limit)
			if err != nil {
				return systemError(err)
			}
			return a.render(cmd, entries, func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, "No snapshots yet.")
					return
				}
				for _, e := range entries {
					fmt.Fprintf(w, "%s  %s  %s  %s\n", e.Hash[:8], e.When.Local().Format("2006-01-02 15:04"), e.Author, e.Message)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of snapshots (0 = all)")
	return cmd
}
