package main

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/utils"
)

func newIndexCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "index <lib.yaml...> --out lib.db",
		Short: "Build a SQLite library index from library declaration files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			if !utils.IsLibraryIndex(out) {
				return fmt.Errorf("index file %s must end in .db", out)
			}
			n, err := modules.BuildIndex(cmd.Context(), out, args)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("indexed %d classes into %s", n, out))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "index file to write")
	return cmd
}
