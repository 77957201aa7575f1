package commands

import (
	"context"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/cache"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/scrapers/europarl"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var memberMemberships bool

func init() {
	memberCmd.Flags().BoolVar(&memberMemberships, "memberships", false, "Fetch the full membership documents.")
	rootCmd.AddCommand(memberCmd)
}

var memberCmd = &cobra.Command{
	Use:   "member <id> [--memberships]",
	Short: "Shows the profile of a member.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.Close()

		id := args[0]
		profile, err := cache.Cached(cmd.Context(), e.cache(), "member", func(ctx context.Context) (europarl.MemberProfile, error) {
			return e.client.LoadMember(ctx, id, memberMemberships)
		}, id, memberMemberships)
		if err != nil {
			fatal("failed to load member", err)
		}

		t := newTable()
		t.AppendRows([]table.Row{
			{"Id", profile.ID},
			{"Name", profile.FullName},
			{"Party", profile.Party},
			{"Country", profile.CountryCode},
			{"Age", profile.Age},
			{"Email", profile.Email},
			{"Homepage", profile.Homepage},
		})
		for _, account := range profile.Accounts {
			t.AppendRow(table.Row{account.Type, account.Url})
		}
		t.Render()

		if len(profile.Memberships) == 0 {
			return
		}
		m := newTable()
		m.AppendHeader(table.Row{"Body", "Role", "Organization", "Start", "End"})
		for _, membership := range profile.Memberships {
			end := ""
			if !membership.Active() {
				end = membership.EndDate.Format("2006-01-02")
			}
			m.AppendRow(table.Row{
				membership.CorporateBody,
				membership.Role,
				membership.Org,
				membership.StartDate.Format("2006-01-02"),
				end,
			})
		}
		m.Render()
	},
}
