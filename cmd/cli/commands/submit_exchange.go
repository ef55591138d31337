package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/services"
)

// SubmitExchangeCmd creates the submitExchange command
func SubmitExchangeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submitExchange <requester_id> <target_id> <date> <my_slot> <other_slot>",
		Short: "Submit a shift exchange request",
		Long: `Submit a request to swap one of your shift slots with another team member.
Slots are "top" or "bottom"; the two slots do not have to match.
The request stays pending until a supervisor approves or rejects it.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := services.SubmitExchangeParams{
				Department:     app.Cfg.Department,
				RequesterID:    args[0],
				TargetID:       args[1],
				Date:           args[2],
				MyShiftType:    model.Row(args[3]),
				OtherShiftType: model.Row(args[4]),
			}

			app.Logger.Debug("submitExchange command",
				zap.String("requester_id", params.RequesterID),
				zap.String("target_id", params.TargetID),
				zap.String("date", params.Date))

			result, err := services.SubmitExchange(app.Ctx, app.Store, app.Hub, app.Logger, params)
			if err != nil {
				return err
			}

			req := result.Request
			fmt.Printf("\n✓ Exchange request submitted!\n\n")
			fmt.Printf("Request ID:  %s\n", req.ID)
			fmt.Printf("Requester:   %s (%s slot, %q)\n", req.RequesterName, req.MyShiftType, req.MyShiftValue)
			fmt.Printf("Counterpart: %s (%s slot, %q)\n", req.TargetName, req.OtherShiftType, req.OtherShiftValue)
			fmt.Printf("Date:        %s\n", req.Date)
			fmt.Printf("Status:      %s\n\n", req.Status)
			return nil
		},
	}
}
