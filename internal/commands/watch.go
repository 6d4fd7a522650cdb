package commands

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emitrack/emitrack/internal/identity"
	"github.com/emitrack/emitrack/internal/ledger"
	"github.com/emitrack/emitrack/internal/live"
	"github.com/emitrack/emitrack/internal/model"
)

type watchOptions struct {
	month    string
	interval time.Duration
	once     bool
}

func newWatchCommand(g *globals) *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the monthly dashboard on screen, redrawn when records change",
		Args:  cobra.NoArgs,
		RunE: g.withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			return runWatch(cmd, e, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.month, "month", "", "month, YYYY-MM (default: current)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 2*time.Second, "how often to check for changes made elsewhere")
	cmd.Flags().BoolVar(&opts.once, "once", false, "print the first complete dashboard and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, e *env, opts watchOptions) error {
	owner := e.svc.Owner()
	if owner == "" {
		return &model.InvalidInputError{Field: "owner_id", Reason: "is required"}
	}
	p, err := e.period(opts.month)
	if err != nil {
		return err
	}
	if opts.interval <= 0 {
		return &model.InvalidInputError{Field: "interval", Reason: "must be positive"}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Only the newest views matter; publish replaces anything unread.
	views := make(chan ledger.Views, 1)
	publish := func(v ledger.Views) {
		select {
		case <-views:
		default:
		}
		views <- v
	}
	sess := live.NewSession(e.store, identity.NewVariable(owner), publish, live.Options{
		Period: &p,
		Now:    e.g.now,
		Log:    e.log,
	})

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return sess.Run(gctx)
	})
	grp.Go(func() error {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()

		var last string
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				e.store.Refresh(owner)
			case v := <-views:
				out, err := e.fmt.Summary(v)
				if err != nil {
					return err
				}
				if out != last {
					if err := e.show(out, nil); err != nil {
						return err
					}
					last = out
				}
				if opts.once {
					cancel()
					return nil
				}
			}
		}
	})
	return grp.Wait()
}
