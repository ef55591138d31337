package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/services"
)

// ApproveCmd creates the approve command
func ApproveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <request_id>",
		Short: "Approve a pending exchange request and apply it to the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decidedBy, _ := cmd.Flags().GetString("by")

			app.Logger.Debug("approve command",
				zap.String("request_id", args[0]),
				zap.String("decided_by", decidedBy))

			result, err := services.Approve(
				app.Ctx, app.Store, app.Hub, app.Logger,
				args[0], decidedBy, app.Cfg.ApprovalRetries)
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Request approved and applied to the roster\n\n")
			fmt.Printf("Request ID:     %s\n", result.Request.ID)
			fmt.Printf("Roster:         %s-%s\n", result.Roster.Department, result.Roster.MonthKey)
			fmt.Printf("Roster version: %d\n\n", result.Roster.Version)
			return nil
		},
	}

	cmd.Flags().String("by", "supervisor", "Name recorded as the deciding supervisor")
	return cmd
}

// RejectCmd creates the reject command
func RejectCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <request_id>",
		Short: "Reject a pending exchange request; the roster is left untouched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decidedBy, _ := cmd.Flags().GetString("by")

			result, err := services.Reject(app.Ctx, app.Store, app.Hub, app.Logger, args[0], decidedBy)
			if err != nil {
				return err
			}

			fmt.Printf("\n❌ Request rejected\n\n")
			fmt.Printf("Request ID: %s\n", result.Request.ID)
			fmt.Printf("Decided by: %s\n\n", result.Request.DecidedBy)
			return nil
		},
	}

	cmd.Flags().String("by", "supervisor", "Name recorded as the deciding supervisor")
	return cmd
}
