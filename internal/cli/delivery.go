package cli

import (
	"github.com/spf13/cobra"
)

// DeliveryCmd returns the delivery command group.
func DeliveryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delivery",
		Short: "Inspect the delivery audit trail",
	}
	cmd.AddCommand(deliveryListCmd())
	return cmd
}

func deliveryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List delivery attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			obligationID, _ := cmd.Flags().GetString("obligation")
			outcome, _ := cmd.Flags().GetString("outcome")
			limit, _ := cmd.Flags().GetInt("limit")
			return c.DeliveryAdapter(cmd.OutOrStdout()).List(cmd.Context(), obligationID, outcome, limit)
		},
	}
	cmd.Flags().String("obligation", "", "Only show attempts for this obligation")
	cmd.Flags().String("outcome", "", "Filter by outcome (sent, failed)")
	cmd.Flags().Int("limit", 50, "Maximum rows to show (0 for all)")
	return cmd
}
