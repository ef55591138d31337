package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/services"
)

// ShowRosterCmd creates the showRoster command
func ShowRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "showRoster <month_key>",
		Short: "Print the department's duty roster for a month (YYYY-MM)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			monthKey := args[0]

			roster, err := services.GetRoster(app.Ctx, app.Store, app.Logger, app.Cfg.Department, monthKey)
			if err != nil {
				return err
			}

			fmt.Printf("\n📅 Roster %s-%s (version %d)\n\n", roster.Department, roster.MonthKey, roster.Version)
			if len(roster.Schedule) == 0 {
				fmt.Println("  (empty)")
				return nil
			}

			memberIDs := make([]string, 0, len(roster.Schedule))
			for id := range roster.Schedule {
				memberIDs = append(memberIDs, id)
			}
			sort.Strings(memberIDs)

			for _, memberID := range memberIDs {
				days := roster.Schedule[memberID]
				dayIndexes := make([]int, 0, len(days))
				for day := range days {
					dayIndexes = append(dayIndexes, day)
				}
				sort.Ints(dayIndexes)

				fmt.Printf("%s:\n", memberID)
				for _, day := range dayIndexes {
					assignment := days[day]
					fmt.Printf("  day %2d: top=%-4q bottom=%-4q\n", day+1, assignment.Top, assignment.Bottom)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
