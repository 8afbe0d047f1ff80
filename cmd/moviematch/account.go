package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oggyb/moviematch/internal/identity"
)

func newSignUpCmd(c *client) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			st, err := c.ident.SignUp(ctx, email, password, name)
			if err != nil {
				return err
			}
			if err := c.remember(st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome %s. Create a couple or join one with an invite code.\n", label(st))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignInCmd(c *client) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			st, err := c.ident.SignIn(ctx, email, password)
			if err != nil {
				return err
			}
			if err := c.remember(st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", label(st))
			printCouple(cmd, st)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignOutCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Revoke the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			var remoteErr error
			if _, err := c.resume(ctx); err == nil {
				remoteErr = c.ident.SignOut(ctx)
			}
			if err := c.tokens.Clear(); err != nil {
				return errors.Join(remoteErr, err)
			}
			if remoteErr != nil {
				c.log.Warn("server did not confirm sign-out", "err", remoteErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoAmICmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and couple",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			st, err := c.resume(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", label(st), st.User.Email)
			printCouple(cmd, st)
			return nil
		},
	}
}

func label(st identity.State) string {
	if st.User == nil {
		return "nobody"
	}
	if st.User.DisplayName != "" {
		return st.User.DisplayName
	}
	return st.User.Email
}

func printCouple(cmd *cobra.Command, st identity.State) {
	out := cmd.OutOrStdout()
	switch {
	case st.Couple == nil:
		fmt.Fprintln(out, "No couple yet: `moviematch couple create` or `moviematch couple join CODE`.")
	case st.Couple.Complete():
		fmt.Fprintf(out, "Paired (couple %s).\n", st.Couple.ID)
	default:
		fmt.Fprintf(out, "Solo mode. Share invite code %s with your partner.\n", st.Couple.InviteCode)
	}
}
