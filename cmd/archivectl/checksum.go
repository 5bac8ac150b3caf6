package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"footage-archive/internal/mediatypes"
	"footage-archive/internal/scanner"
)

func newChecksumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checksum <file>",
		Short: "Print the content hash the archive would record for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := mediatypes.NormalizePath(args[0])
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%w: %s is a directory", mediatypes.ErrInvalidInput, path)
			}

			sc := scanner.New(scanner.DefaultConfig(mediatypes.ExtensionSet{}))
			sum, err := sc.HashFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			return nil
		},
	}
}
