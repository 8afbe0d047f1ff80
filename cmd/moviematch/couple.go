package main

import (
	"github.com/spf13/cobra"
)

func newCoupleCmd(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "couple",
		Short: "Create, join or show your couple",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Start a couple and get an invite code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			if _, err := c.resume(ctx); err != nil {
				return err
			}
			st, err := c.ident.CreateCouple(ctx)
			if err != nil {
				return err
			}
			printCouple(cmd, st)
			return nil
		},
	}

	join := &cobra.Command{
		Use:   "join CODE",
		Short: "Join your partner's couple",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			if _, err := c.resume(ctx); err != nil {
				return err
			}
			st, err := c.ident.JoinCouple(ctx, args[0])
			if err != nil {
				return err
			}
			printCouple(cmd, st)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show couple status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			if _, err := c.resume(ctx); err != nil {
				return err
			}
			st, err := c.ident.RefreshCouple(ctx)
			if err != nil {
				return err
			}
			printCouple(cmd, st)
			return nil
		},
	}

	cmd.AddCommand(create, join, show)
	return cmd
}
