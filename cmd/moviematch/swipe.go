package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oggyb/moviematch/internal/model"
	"github.com/oggyb/moviematch/internal/swipe/session"
)

const swipeHelp = "[l]eft not interested  [r]ight want to watch  [u]p seen, liked  [d]own seen, disliked  [z] undo  [q]uit"

var keyDirections = map[string]model.Direction{
	"l": model.Left, "left": model.Left,
	"r": model.Right, "right": model.Right,
	"u": model.Up, "up": model.Up,
	"d": model.Down, "down": model.Down,
}

func newSwipeCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "swipe [left|right|up|down]",
		Short: "Decide on movies; interactive without an argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resumeCtx, cancel := c.callCtx(ctx)
			st, err := c.resume(resumeCtx)
			cancel()
			if err != nil {
				return err
			}

			ctrl := session.New(c.gw, c.ident, c.log, session.WithCallTimeout(c.cfg.Client.CallTimeout))
			defer ctrl.Close()
			if err := ctrl.Reload(ctx); err != nil {
				return err
			}
			if st.Couple == nil || !st.Couple.Complete() {
				printCouple(cmd, st)
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				dir, ok := keyDirections[strings.ToLower(args[0])]
				if !ok {
					return fmt.Errorf("unknown direction %q", args[0])
				}
				printCard(out, ctrl.Snapshot())
				if err := decide(ctx, ctrl, dir, out); err != nil {
					return err
				}
				printCard(out, ctrl.Snapshot())
				return nil
			}
			return interactive(ctx, ctrl, cmd.InOrStdin(), out)
		},
	}
}

func interactive(ctx context.Context, ctrl *session.Controller, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, swipeHelp)
	printCard(out, ctrl.Snapshot())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		key := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch {
		case key == "q" || key == "quit":
			return nil
		case key == "z" || key == "undo":
			undone, err := ctrl.Undo(ctx)
			switch {
			case err != nil:
				fmt.Fprintf(out, "undo failed: %v\n", err)
			case !undone:
				fmt.Fprintln(out, "nothing to undo")
			}
		case key == "reload":
			if err := ctrl.Reload(ctx); err != nil {
				fmt.Fprintf(out, "reload failed: %v\n", err)
			}
		default:
			dir, ok := keyDirections[key]
			if !ok {
				fmt.Fprintln(out, swipeHelp)
				continue
			}
			if err := decide(ctx, ctrl, dir, out); err != nil {
				fmt.Fprintf(out, "could not save your choice, try again: %v\n", err)
			}
		}
		printCard(out, ctrl.Snapshot())
	}
	return scanner.Err()
}

// decide submits one gesture and shows the match overlay when there is one.
func decide(ctx context.Context, ctrl *session.Controller, dir model.Direction, out io.Writer) error {
	_, err := ctrl.DecideDirection(ctx, dir)
	if errors.Is(err, session.ErrNoCard) {
		return fmt.Errorf("no movie to decide on: %w", err)
	}
	if err != nil {
		return err
	}
	if snap := ctrl.Snapshot(); snap.State == session.MatchShown && snap.Matched != nil {
		title := fmt.Sprintf("movie %d", snap.Matched.MovieID)
		if snap.Matched.Movie != nil {
			title = snap.Matched.Movie.Title
		}
		fmt.Fprintf(out, "*** It's a match! %s is on your watch list. ***\n", title)
		ctrl.DismissMatch()
	}
	return nil
}

func printCard(out io.Writer, snap session.Snapshot) {
	switch snap.State {
	case session.Exhausted:
		fmt.Fprintln(out, "No more movies. Type `reload` to check again.")
		return
	case session.Failed:
		fmt.Fprintf(out, "Could not load movies: %v. Type `reload` to retry.\n", snap.Err)
		return
	}
	if snap.Current == nil {
		return
	}
	m := snap.Current
	fmt.Fprintf(out, "\n%s (%d)  ★ %.1f", m.Title, m.Year, m.Rating)
	if m.Runtime > 0 {
		fmt.Fprintf(out, "  %d min", m.Runtime)
	}
	fmt.Fprintln(out)
	if m.Director != "" {
		fmt.Fprintf(out, "  dir. %s", m.Director)
		if len(m.Cast) > 0 {
			fmt.Fprintf(out, " · %s", strings.Join(m.Cast, ", "))
		}
		fmt.Fprintln(out)
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(out, "  %s\n", strings.Join(m.Genres, " / "))
	}
	if m.Synopsis != "" {
		fmt.Fprintf(out, "  %s\n", m.Synopsis)
	}
	if snap.CanUndo {
		fmt.Fprintln(out, "  (z to undo the last choice)")
	}
}
