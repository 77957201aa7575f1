package commands

import (
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	membersLimit int
	membersTerm  int
)

func init() {
	membersCmd.Flags().IntVar(&membersLimit, "limit", votes.RosterLimit, "The maximum amount of members to list.")
	membersCmd.Flags().IntVar(&membersTerm, "term", votes.CurrentTerm, "The parliamentary term, 0 lists the sitting members.")
	rootCmd.AddCommand(membersCmd)
}

var membersCmd = &cobra.Command{
	Use:   "members [--limit <n>] [--term <term>]",
	Short: "Lists the members of a parliamentary term.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.Close()

		roster := cachedRoster{inner: e.client, store: e.cache()}
		members, err := roster.LoadRoster(cmd.Context(), membersLimit, membersTerm)
		if err != nil {
			fatal("failed to load members", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name"})
		for _, member := range members {
			t.AppendRow(table.Row{member.ID, member.FullName})
		}
		t.AppendFooter(table.Row{"", len(members)})
		t.Render()
	},
}
