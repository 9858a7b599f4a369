package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/pdftext"
	"github.com/qepting91/edikte-scraper/internal/pipeline"
)

var (
	downloadIDs []string
	downloadAll bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the appraisal PDF of stored records",
	Long: `Download opens each record's detail page, finds the appraisal PDF and
saves it as <DOWNLOADS_DIR>/gutachten_<id>.pdf. The record's status becomes
downloaded, no_attachment or download_failed.

Examples:
  edikte download --id 1a2b3c4d --id 5e6f7a8b
  edikte download --all`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringArrayVar(&downloadIDs, "id", nil, "Record id (repeatable)")
	downloadCmd.Flags().BoolVar(&downloadAll, "all", false, "Download every record without a PDF")
}

func runDownload(cmd *cobra.Command, args []string) error {
	if !downloadAll && len(downloadIDs) == 0 {
		return errors.New("pass --id or --all")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var targets []pipeline.Target
	if downloadAll {
		for _, r := range a.store.List() {
			if r.PDFPath == "" {
				targets = append(targets, pipeline.Target{ID: r.ID, DetailURL: r.DetailURL})
			}
		}
	} else {
		for _, id := range downloadIDs {
			r, err := a.store.Get(id)
			if err != nil {
				return err
			}
			targets = append(targets, pipeline.Target{ID: r.ID, DetailURL: r.DetailURL})
		}
	}

	results := a.pipeline.DownloadBatch(cmd.Context(), targets)
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Skipped {
			fmt.Fprintf(out, "%s\tskipped\t\n", res.ID)
			continue
		}
		if _, err := a.store.Update(res.ID, func(r *domain.Record) {
			r.Status = res.Status
			if res.Path != "" {
				r.PDFPath = res.Path
				r.PDFTextPreview = preview(res.Path)
			}
		}); err != nil {
			logger.Error("Failed to update record", "id", res.ID, "err", err)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", res.ID, res.Status, res.Path)
	}
	return cmd.Context().Err()
}

// preview extracts the first characters of the PDF for the record. A PDF
// without a text layer yields an empty preview.
func preview(path string) string {
	text, err := pdftext.Extract(path)
	if err != nil {
		logger.Warn("PDF text extraction failed", "path", path, "err", err)
		return ""
	}
	return pdftext.Preview(text, pdftext.PreviewLength)
}
