package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		// database.Open already migrated the schema.
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
		return nil
	},
}

var (
	userEmail    string
	userPassword string
	userRole     string
)

var addUserCmd = &cobra.Command{
	Use:   "add-user",
	Short: "Register a login",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRole(userRole)
		if err != nil {
			return err
		}
		if strings.TrimSpace(userEmail) == "" || userPassword == "" {
			return fmt.Errorf("--email and --password are required")
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user := &models.User{Email: strings.TrimSpace(userEmail), PasswordHash: hash}
		if err := e.store.CreateUser(cmd.Context(), user); err != nil {
			return err
		}
		if err := e.store.SetRole(cmd.Context(), user.ID, role); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User created successfully: %s (%s)\n", user.Email, role)
		return nil
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <email> <admin|user>",
	Short: "Grant or revoke admin access",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRole(args[1])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		user, err := e.store.GetUserByEmail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("find user %s: %w", args[0], err)
		}
		if err := e.store.SetRole(cmd.Context(), user.ID, role); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, role)
		return nil
	},
}

var notify bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store today's profit snapshot and optionally send the daily report",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		var notifier services.Notifier
		if notify {
			notifier = services.NewNotifier(e.cfg.Telegram.Token, e.cfg.Telegram.ChatID, e.logger)
		}
		loc := e.cfg.Location()
		s := services.NewScheduler(e.store, notifier, loc, 0, 0, e.logger)
		if err := s.RunDaily(cmd.Context(), time.Now().In(loc)); err != nil {
			return err
		}

		snaps, err := e.store.ListProfitSnapshots(cmd.Context())
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			s := snaps[0]
			fmt.Fprintf(cmd.OutOrStdout(), "%s: debt %s, returned %s, remaining %s\n", s.Date, s.Debt, s.Profit, s.Remaining())
		}
		return nil
	},
}

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "List cached payment-history day totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		sums, err := e.store.ListDaySummaries(cmd.Context())
		if err != nil {
			return err
		}
		printSummaries(cmd.OutOrStdout(), sums)
		return nil
	},
}

var deletionsCmd = &cobra.Command{
	Use:   "deletions",
	Short: "Show the audit log of deleted clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		logs, err := e.store.ListDeletions(cmd.Context())
		if err != nil {
			return err
		}
		printDeletions(cmd.OutOrStdout(), logs, e.cfg.Location())
		return nil
	},
}

func printSummaries(w io.Writer, sums []models.DaySummary) {
	if len(sums) == 0 {
		fmt.Fprintln(w, "No day summaries")
		return
	}
	for _, s := range sums {
		fmt.Fprintf(w, "%s\t%s\n", s.Date, s.Profit)
	}
}

func printDeletions(w io.Writer, logs []*models.DeletionLog, loc *time.Location) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No deletions")
		return
	}
	for _, l := range logs {
		name, amount := "-", "-"
		if l.Client != nil {
			name, amount = l.Client.FullName, l.Client.PaymentAmount
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			l.DeletedAt.In(loc).Format("2006-01-02 15:04"), l.DeletedBy, l.ClientID, name, amount)
	}
}

func init() {
	addUserCmd.Flags().StringVar(&userEmail, "email", "", "Login email")
	addUserCmd.Flags().StringVar(&userPassword, "password", "", "Login password")
	addUserCmd.Flags().StringVar(&userRole, "role", string(models.RoleUser), "Role: admin or user")
	snapshotCmd.Flags().BoolVar(&notify, "notify", false, "Send the report through the configured notifier")
}

func parseRole(s string) (models.Role, error) {
	switch models.Role(strings.ToLower(strings.TrimSpace(s))) {
	case models.RoleAdmin:
		return models.RoleAdmin, nil
	case models.RoleUser:
		return models.RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q: want admin or user", s)
	}
}

