package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oggyb/moviematch/internal/model"
	"github.com/oggyb/moviematch/internal/watchlist"
)

func newMatchesCmd(c *client) *cobra.Command {
	var watched bool
	cmd := &cobra.Command{
		Use:     "matches",
		Aliases: []string{"watchlist"},
		Short:   "List movies you both want to watch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			if _, err := c.resume(ctx); err != nil {
				return err
			}
			list := watchlist.New(c.gw, c.log)
			var (
				matches []model.Match
				err     error
			)
			if watched {
				matches, err = list.Watched(ctx)
			} else {
				matches, err = list.Unwatched(ctx)
			}
			if err != nil {
				return err
			}
			printMatches(cmd.OutOrStdout(), matches, watched)
			return nil
		},
	}
	cmd.Flags().BoolVar(&watched, "watched", false, "show movies already watched")
	return cmd
}

func newMarkWatchedCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-watched MATCH_ID",
		Short: "Move a match to the watched list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.callCtx(cmd.Context())
			defer cancel()

			if _, err := c.resume(ctx); err != nil {
				return err
			}
			m, rest, err := watchlist.New(c.gw, c.log).MarkWatched(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s watched at %s.\n", title(m), formatTime(m.WatchedAt))
			printMatches(cmd.OutOrStdout(), rest, false)
			return nil
		},
	}
}

func printMatches(out io.Writer, matches []model.Match, watched bool) {
	if len(matches) == 0 {
		if watched {
			fmt.Fprintln(out, "Nothing watched yet.")
		} else {
			fmt.Fprintln(out, "Your watch list is empty. Keep swiping!")
		}
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tMOVIE\tMATCHED\tWATCHED")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, title(m), formatTime(&m.CreatedAt), formatTime(m.WatchedAt))
	}
	_ = tw.Flush()
}

func title(m model.Match) string {
	if m.Movie == nil {
		return fmt.Sprintf("movie %d", m.MovieID)
	}
	return fmt.Sprintf("%s (%d)", m.Movie.Title, m.Movie.Year)
}
