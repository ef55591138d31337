package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/services"
)

// SubmitGiveCmd creates the submitGive command
func SubmitGiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submitGive <requester_id> <target_id> <date> <my_slot>",
		Short: "Submit a shift give-away request",
		Long: `Submit a request to give one of your shift slots to another team member.
The target must have a free slot on that date (unset or off duty);
the top slot is preferred when both are free.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := services.SubmitGiveParams{
				Department:  app.Cfg.Department,
				RequesterID: args[0],
				TargetID:    args[1],
				Date:        args[2],
				MyShiftType: model.Row(args[3]),
			}

			app.Logger.Debug("submitGive command",
				zap.String("requester_id", params.RequesterID),
				zap.String("target_id", params.TargetID),
				zap.String("date", params.Date))

			result, err := services.SubmitGive(app.Ctx, app.Store, app.Hub, app.Logger, params)
			if err != nil {
				return err
			}

			req := result.Request
			fmt.Printf("\n✓ Give request submitted!\n\n")
			fmt.Printf("Request ID: %s\n", req.ID)
			fmt.Printf("Giver:      %s (%s slot, %q)\n", req.RequesterName, req.MyShiftType, req.MyShiftValue)
			fmt.Printf("Recipient:  %s (into %s slot)\n", req.TargetName, req.TargetShiftType)
			fmt.Printf("Date:       %s\n", req.Date)
			fmt.Printf("Status:     %s\n\n", req.Status)
			return nil
		},
	}
}
