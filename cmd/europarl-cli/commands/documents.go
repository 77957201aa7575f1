package commands

import (
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var documentsLimit int

func init() {
	documentsCmd.Flags().IntVar(&documentsLimit, "limit", 10, "The maximum amount of documents to list.")
	rootCmd.AddCommand(documentsCmd)
}

var documentsCmd = &cobra.Command{
	Use:   "documents [--limit <n>]",
	Short: "Lists the latest plenary roll-call vote documents.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.Close()

		ids, err := e.service.GetDocumentIdentifiers(cmd.Context(), documentsLimit)
		if err != nil {
			fatal("failed to list documents", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Document", "Date"})
		for _, id := range ids {
			source := votes.SourceFromDocumentID(id)
			date := ""
			if !source.Date.IsZero() {
				date = source.Date.Format("2006-01-02")
			}
			t.AppendRow(table.Row{id, date})
		}
		t.Render()
	},
}
