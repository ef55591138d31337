package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/services"
)

// ReviewCmd creates the review command, the supervisor's pending queue
func ReviewCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "List the department's exchange requests awaiting a decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")

			requests, err := services.ListRequestsByDepartment(
				app.Ctx, app.Store, app.Logger, app.Cfg.Department, model.RequestStatus(status))
			if err != nil {
				return err
			}

			printRequests(app.Cfg.Department, requests)
			return nil
		},
	}

	cmd.Flags().String("status", string(model.StatusPending), "Filter by status (pending, approved, rejected, or empty for all)")
	return cmd
}

// ListRequestsCmd creates the listRequests command, a member's own history
func ListRequestsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRequests <requester_id>",
		Short: "List the exchange requests a member has submitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := services.ListRequestsByRequester(app.Ctx, app.Store, app.Logger, args[0])
			if err != nil {
				return err
			}

			printRequests(app.Cfg.Department, requests)
			return nil
		},
	}
}

func printRequests(department string, requests []model.ExchangeRequest) {
	fmt.Printf("\n📋 Exchange requests (%s): %d\n\n", department, len(requests))
	if len(requests) == 0 {
		return
	}

	for _, req := range requests {
		marker := "⏳"
		switch req.Status {
		case model.StatusApproved:
			marker = "✅"
		case model.StatusRejected:
			marker = "❌"
		}

		fmt.Printf("%s %s  [%s]\n", marker, req.ID, req.Status)
		if req.Kind == model.KindExchange {
			fmt.Printf("   %s (%s %q) ⇄ %s (%s %q) on %s\n",
				req.RequesterName, req.MyShiftType, req.MyShiftValue,
				req.TargetName, req.OtherShiftType, req.OtherShiftValue,
				req.Date)
		} else {
			fmt.Printf("   %s gives %s %q to %s (%s slot) on %s\n",
				req.RequesterName, req.MyShiftType, req.MyShiftValue,
				req.TargetName, req.TargetShiftType,
				req.Date)
		}
		if req.DecidedAt != nil {
			fmt.Printf("   decided by %s at %s\n", req.DecidedBy, req.DecidedAt.Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}
}
