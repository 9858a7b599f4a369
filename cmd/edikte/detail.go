package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var detailSave bool

var detailCmd = &cobra.Command{
	Use:   "detail <url>",
	Short: "Parse one detail page and print the record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.pipeline.FetchDetail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if detailSave {
			stored, err := a.store.Upsert(rec, "")
			if err != nil {
				return err
			}
			logger.Info("Record saved", "id", stored.ID)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
	detailCmd.Flags().BoolVar(&detailSave, "save", false, "Also store the record")
}
