package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/keyshop/internal/model"
)

func newLoginCmd() *cobra.Command {
	var password, role string

	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Sessions.Login(cmd.Context(), Scope, args[0], password, model.ParseRole(role))
			if err != nil {
				return err
			}
			output(cmd).PrintMessage(fmt.Sprintf("Welcome back, %s!", user.Username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&role, "role", "", "Role to log in as: customer, seller")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email, password, role string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Sessions.Register(cmd.Context(), Scope, email, args[0], password, model.ParseRole(role))
			if err != nil {
				return err
			}
			output(cmd).PrintMessage(fmt.Sprintf("Registered %s as %s", user.Username, user.Role))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&role, "role", "customer", "Account role: customer, seller")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Sessions.Logout(cmd.Context(), Scope)
			output(cmd).PrintMessage("You have been logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			output(cmd).Print(restore(cmd))
			return nil
		},
	}
}
