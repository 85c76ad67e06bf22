package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frozify/storefront/internal/auth"
)

func newLoginCmd(appFor appProvider) *cobra.Command {
	var req auth.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the token in the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			identity, err := a.auth.LoginWithPassword(cmd.Context(), a.session.Auth, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", identity.Username, identity.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(appFor appProvider) *cobra.Command {
	var req auth.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			identity, err := a.auth.Register(cmd.Context(), a.session.Auth, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Welcome, %s\n", identity.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password, at least 6 characters")
	for _, name := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newLogoutCmd(appFor appProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			if err := a.session.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(appFor appProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a, err := appFor()
			if err != nil {
				return err
			}
			identity := a.session.Auth.Current()
			if identity == nil {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}
			fmt.Fprintf(a.out, "%s <%s> role=%s\n", identity.Username, identity.Email, identity.Role)
			return nil
		},
	}
}
