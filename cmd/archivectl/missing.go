package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"footage-archive/internal/mediatypes"
)

type missingOutputEntry struct {
	ContentHash string `json:"content_hash"`
	FilePath    string `json:"file_path"`
}

func newMissingCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "missing-previews",
		Short: "List cataloged files that have no preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}

			a, err := openApp(cmd.Context(), opts, "")
			if err != nil {
				return err
			}
			defer a.Close()

			missing, err := a.db.ListFilesWithoutClipPreview(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				return outputMissingJSON(cmd, missing)
			}
			outputMissingTable(cmd, missing)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func outputMissingJSON(cmd *cobra.Command, missing []mediatypes.MissingPreview) error {
	output := make([]missingOutputEntry, 0, len(missing))
	for _, m := range missing {
		output = append(output, missingOutputEntry{ContentHash: m.ContentHash, FilePath: m.FilePath()})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// hashWidth is the width of a hex MD5.
const hashWidth = 32

func outputMissingTable(cmd *cobra.Command, missing []mediatypes.MissingPreview) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"Content Hash", "File"})

	pathWidth := getTerminalWidth() - hashWidth - 7
	if pathWidth < 20 {
		pathWidth = 20
	}
	for _, m := range missing {
		t.AppendRow(table.Row{m.ContentHash, truncateLeft(m.FilePath(), pathWidth)})
	}
	t.AppendFooter(table.Row{"Total", len(missing)})
	t.Render()
}

// truncateLeft keeps the end of s, which for paths is the part that matters.
func truncateLeft(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	width := runewidth.StringWidth("...")
	i := len(runes)
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if width+w > maxWidth {
			break
		}
		width += w
		i--
	}
	return "..." + string(runes[i:])
}
