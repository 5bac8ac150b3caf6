package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"footage-archive/internal/pipeline"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var previews bool

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Hash and record every allowed file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := pipeline.ValidateScanRoot(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), opts, "")
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.pipeline.IndexDirectory(cmd.Context(), root, previews)
			if err != nil {
				return err
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"Root", "Files", "Duration"})
			t.AppendRow(table.Row{report.Root, report.Files, report.Duration.Round(time.Millisecond)})
			t.Render()
			if report.Previews != nil {
				renderPreviewReport(cmd, *report.Previews)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&previews, "previews", false, "Generate previews for scanned files that have none")
	return cmd
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "import <metadata.csv>",
		Short: "Import a metadata CSV export and build previews for matched files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pipeline.ValidateMetadataFile(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), opts, policy)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.pipeline.ImportMetadata(cmd.Context(), path)
			if err != nil {
				return err
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"Rows", "Matched", "Unmatched", "Invalid", "Keywords"})
			t.AppendRow(table.Row{report.Rows, report.Matched, report.Unmatched, report.Invalid, report.Keywords})
			t.Render()

			for _, rowErr := range report.InvalidRows {
				cmd.PrintErrln(rowErr.Error())
			}
			renderPreviewReport(cmd, report.Previews)
			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "Invalid row policy: skip or abort (default: METADATA_PARSE_POLICY)")
	return cmd
}

func newRepairCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repair-previews",
		Short: "Build previews for every cataloged file that has none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opts, "")
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.pipeline.RepairMissingPreviews(cmd.Context())
			if err != nil {
				return err
			}
			renderPreviewReport(cmd, report)
			return nil
		},
	}
}

func renderPreviewReport(cmd *cobra.Command, r pipeline.PreviewReport) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"Previews", "Generated", "Missing On Disk", "No Duration", "Failed"})
	t.AppendRow(table.Row{r.Attempted, r.Generated, r.MissingOnDisk, r.NoDuration, r.Failed})
	t.Render()
}
