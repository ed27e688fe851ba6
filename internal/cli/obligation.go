package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/followup/internal/adapters/cli"
	"github.com/example/followup/internal/core/obligation"
)

// ObligationCmd returns the obligation command group.
func ObligationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "obligation",
		Aliases: []string{"ob"},
		Short:   "Manage follow-up obligations",
		Long:    "Create, list, snooze, reschedule and complete follow-up obligations",
	}

	cmd.AddCommand(obligationAddCmd())
	cmd.AddCommand(obligationListCmd())
	cmd.AddCommand(obligationShowCmd())
	cmd.AddCommand(obligationSnoozeCmd())
	cmd.AddCommand(obligationDoneCmd())
	cmd.AddCommand(obligationRescheduleCmd())
	cmd.AddCommand(obligationDeleteCmd())
	return cmd
}

func obligationAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [contact] [description]",
		Short: "Record a new obligation",
		Long: `Record a new Pending obligation.

Dates accept YYYY-MM-DD, today, tomorrow or +N (days from today).

Examples:
  followup obligation add "Dana Smith" "Send the signed contract" --due +3 --source meeting --email dana@example.com
  followup obligation add "Lee" "Call back about the quote" --due tomorrow --phone +15551234567 --priority high`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			source, _ := cmd.Flags().GetString("source")
			due, _ := cmd.Flags().GetString("due")
			priority, _ := cmd.Flags().GetString("priority")
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")

			return c.ObligationAdapter(cmd.OutOrStdout()).Add(cmd.Context(), cliadapter.AddRequest{
				Source:      source,
				Contact:     args[0],
				Email:       email,
				Phone:       phone,
				Description: args[1],
				Due:         due,
				Priority:    priority,
			})
		},
	}
	cmd.Flags().String("source", obligation.SourceOther, fmt.Sprintf("Where the promise was made (%s)", strings.Join(obligation.Sources(), ", ")))
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD, today, tomorrow, +N)")
	cmd.Flags().String("priority", obligation.PriorityMedium, fmt.Sprintf("Priority (%s)", strings.Join(obligation.Priorities(), ", ")))
	cmd.Flags().String("email", "", "Contact email address")
	cmd.Flags().String("phone", "", "Contact phone in E.164 form, used for WhatsApp/SMS")
	cmd.MarkFlagRequired("due")
	return cmd
}

func obligationListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List obligations by due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			status, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")
			return c.ObligationAdapter(cmd.OutOrStdout()).List(cmd.Context(), status, limit)
		},
	}
	cmd.Flags().String("status", "", fmt.Sprintf("Filter by status (%s)", strings.Join(obligation.Statuses(), ", ")))
	cmd.Flags().Int("limit", 0, "Maximum rows to show (0 for all)")
	return cmd
}

func obligationShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [obligation-id]",
		Short: "Show obligation details and its delivery history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			if _, err := c.ObligationAdapter(out).Show(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(out, "Deliveries:")
			return c.DeliveryAdapter(out).List(cmd.Context(), args[0], "", 20)
		},
	}
}

func obligationSnoozeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snooze [obligation-id]",
		Short: "Pause reminders until a later date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			until, _ := cmd.Flags().GetString("until")
			return c.ObligationAdapter(cmd.OutOrStdout()).Snooze(cmd.Context(), args[0], until)
		},
	}
	cmd.Flags().String("until", "", "Date reminders resume (YYYY-MM-DD, tomorrow, +N)")
	cmd.MarkFlagRequired("until")
	return cmd
}

func obligationDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [obligation-id]",
		Short: "Mark an obligation as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.ObligationAdapter(cmd.OutOrStdout()).Done(cmd.Context(), args[0])
		},
	}
}

func obligationRescheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reschedule [obligation-id]",
		Short: "Move the due date and return the obligation to Pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			due, _ := cmd.Flags().GetString("due")
			return c.ObligationAdapter(cmd.OutOrStdout()).Reschedule(cmd.Context(), args[0], due)
		},
	}
	cmd.Flags().String("due", "", "New due date (YYYY-MM-DD, today, tomorrow, +N)")
	cmd.MarkFlagRequired("due")
	return cmd
}

func obligationDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete [obligation-id]",
		Short: "Delete an obligation and its delivery history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "This will delete %s and all of its delivery records.\n", args[0])
				fmt.Fprint(cmd.OutOrStdout(), "Continue? [y/N] ")
				var response string
				fmt.Fscanln(cmd.InOrStdin(), &response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.ObligationAdapter(cmd.OutOrStdout()).Delete(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
