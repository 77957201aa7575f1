package commands

import (
	"fmt"
	"log/slog"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var votesUnmatched bool

func init() {
	votesCmd.Flags().BoolVar(&votesUnmatched, "unmatched", false, "Also list the printed names that match no member.")
	rootCmd.AddCommand(votesCmd)
}

var votesCmd = &cobra.Command{
	Use:   "votes <document id> [--unmatched]",
	Short: "Shows the proposals voted in a roll-call vote document.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.Close()

		result, err := e.service.LoadDocument(cmd.Context(), args[0])
		if err != nil {
			fatal("failed to load votes", err)
		}
		for _, skip := range result.Skipped {
			slog.Warn("skipped vote block", "err", skip.Error())
		}

		t := newTable()
		t.AppendHeader(table.Row{"Proposal", "Title", "Votes", "For", "Against", "Abstained", "Absent"})
		for _, row := range proposalRows(result.Proposals) {
			t.AppendRow(row)
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		})
		t.Render()

		if !votesUnmatched {
			return
		}

		unmatched := votes.UnmatchedNames(result.Roster, printedNames(result.Proposals))
		if len(unmatched) == 0 {
			fmt.Println("every printed name matches a member.")
			return
		}
		u := newTable()
		u.AppendHeader(table.Row{"Printed name", "Closest member", "Similarity"})
		for _, entry := range unmatched {
			u.AppendRow(table.Row{entry.Name, entry.Closest, fmt.Sprintf("%.2f", entry.Similarity)})
		}
		u.Render()
	},
}

// proposalRows summarizes each proposal by the counts of its final vote.
func proposalRows(proposals []votes.Proposal) []table.Row {
	rows := make([]table.Row, len(proposals))
	for i, proposal := range proposals {
		final := proposal.Final()
		rows[i] = table.Row{
			proposal.ID,
			proposal.Title,
			len(proposal.Votes),
			len(final.Result.Positive),
			len(final.Result.Negative),
			len(final.Result.Abstention),
			len(final.Result.NoVote),
		}
	}
	return rows
}

func printedNames(proposals []votes.Proposal) []string {
	var names []string
	for _, proposal := range proposals {
		for _, vote := range proposal.Votes {
			names = append(names, vote.Positive...)
			names = append(names, vote.Negative...)
			names = append(names, vote.Abstention...)
		}
	}
	return names
}
