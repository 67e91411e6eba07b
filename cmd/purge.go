package main

import (
	"fmt"

	"github.com/brettbedarf/picsort/session"
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently remove every image in the holding directory",
	Long: `Purge empties the holding directory. Undo history only lives as long as a
sort session, so outside a session nothing can restore a held image.`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// purge explicitly below so the count can be reported
	cfg.PurgeOnStart = false
	s, err := session.New(cfg)
	if err != nil {
		return err
	}
	n, err := s.PurgeAll()
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d held images from %s\n", n, s.HoldingDir())
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	return err
}
