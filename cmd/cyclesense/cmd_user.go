package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclesense/internal/cli"
	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/services"
	"go.uber.org/zap"
)

func newUserCommand(options *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts directly in the database",
	}
	cmd.AddCommand(newUserCreateCommand(options), newUserResetPasswordCommand(options))
	return cmd
}

func newUserCreateCommand(options *rootOptions) *cobra.Command {
	var input services.RegisterInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account, prompting for the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, closeDatabase, err := options.openAuthService()
			if err != nil {
				return err
			}
			defer closeDatabase()

			stdin, _ := cmd.InOrStdin().(*os.File)
			if stdin == nil {
				stdin = os.Stdin
			}
			password, err := cli.NewPrompter(stdin, cmd.ErrOrStderr()).NewPassword()
			if err != nil {
				return err
			}
			input.Password = password

			user, err := auth.Register(cmd.Context(), input, time.Now())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), options.output, user)
		},
	}
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.DisplayName, "display-name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUserResetPasswordCommand(options *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Issue a temporary password that must be changed on next login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, closeDatabase, err := options.openAuthService()
			if err != nil {
				return err
			}
			defer closeDatabase()

			temporary, err := auth.ResetPassword(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("reset password for %s: %w", email, err)
			}
			return writeOutput(cmd.OutOrStdout(), options.output, map[string]any{
				"email":                services.NormalizeEmail(email),
				"temporary_password":   temporary,
				"must_change_password": true,
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (options *rootOptions) openAuthService() (*services.AuthService, func(), error) {
	cfg, err := options.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	database, err := db.OpenSQLite(cfg.Database.Path, zap.NewNop())
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, nil, err
	}
	return services.NewAuthService(db.NewUserRepository(database)), func() { _ = sqlDB.Close() }, nil
}
