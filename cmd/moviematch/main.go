// Command moviematch is a terminal client for the MovieMatch service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oggyb/moviematch/internal/config"
	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/gateway"
	"github.com/oggyb/moviematch/internal/identity"
	"github.com/oggyb/moviematch/internal/logger"
)

// client is shared by every subcommand. It is built in the root's
// PersistentPreRunE.
type client struct {
	cfg    *config.Config
	log    *slog.Logger
	gw     *gateway.GRPC
	ident  *identity.Store
	tokens *FileTokenStore
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}
	var server, tokenFile string

	root := &cobra.Command{
		Use:           "moviematch",
		Short:         "Swipe on movies with your partner",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.cfg = config.New()
			if server != "" {
				c.cfg.Client.ServerAddr = server
			}
			if tokenFile != "" {
				c.cfg.Client.TokenFile = tokenFile
			}

			logger.Init(&logger.Config{
				Level:     c.cfg.Log.Level,
				Format:    logger.Format(c.cfg.Log.Format),
				Component: "cli",
				Output:    cmd.ErrOrStderr(),
			})
			c.log = logger.L()

			var err error
			if c.tokens, err = NewFileTokenStore(c.cfg.Client.TokenFile); err != nil {
				return err
			}
			if c.gw, err = gateway.Dial(c.cfg.Client.ServerAddr, c.log); err != nil {
				return fmt.Errorf("failed to connect to %s: %w", c.cfg.Client.ServerAddr, err)
			}
			c.ident = identity.New(c.gw, c.log)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.gw != nil {
				return c.gw.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&server, "server", "", "server address (default $MOVIEMATCH_SERVER)")
	root.PersistentFlags().StringVar(&tokenFile, "token-file", "", "session file (default $MOVIEMATCH_TOKEN_FILE)")

	root.AddCommand(
		newSignUpCmd(c),
		newSignInCmd(c),
		newSignOutCmd(c),
		newWhoAmICmd(c),
		newCoupleCmd(c),
		newSwipeCmd(c),
		newMatchesCmd(c),
		newMarkWatchedCmd(c),
	)
	return root
}

// callCtx bounds a single command's remote calls.
func (c *client) callCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Client.CallTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.cfg.Client.CallTimeout)
}

// resume restores the stored session. A token the server no longer accepts
// is removed.
func (c *client) resume(ctx context.Context) (identity.State, error) {
	sess, err := c.tokens.Load()
	if err != nil {
		return identity.State{}, err
	}
	if sess == nil {
		return identity.State{}, fmt.Errorf("not signed in, run `moviematch signin`: %w", svcErr.ErrAuthRequired)
	}
	st, err := c.ident.Resume(ctx, sess.Token)
	if errors.Is(err, svcErr.ErrAuthRequired) {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.log.Warn("failed to clear session file", "err", clearErr)
		}
		return st, fmt.Errorf("session expired, sign in again: %w", err)
	}
	return st, err
}

// remember persists the signed-in session.
func (c *client) remember(st identity.State) error {
	return c.tokens.Save(storedSession{Token: st.Token, UserID: st.UserID(), Email: st.User.Email})
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
