package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/treescale/internal/event"
	"github.com/danmuck/treescale/internal/observability"
	"github.com/danmuck/treescale/internal/path"
	"github.com/danmuck/treescale/internal/relay"
)

func newPublishCmd(a *app) *cobra.Command {
	var ef eventFlags
	cmd := &cobra.Command{
		Use:   "publish [options]",
		Short: "Publishes one event to its target over NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := ef.event()
			if err != nil {
				return err
			}
			pub, err := relay.NewNATSPublisher(a.cfg.Relay())
			if err != nil {
				return err
			}
			defer pub.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := pub.Publish(ctx, ev); err != nil {
				return err
			}
			if err := pub.Flush(ctx); err != nil {
				return fmt.Errorf("flushing publish: %w", err)
			}
			log.Info().
				Str("subject", relay.Subject(a.cfg.SubjectPrefix, ev.Target)).
				Str("name", ev.Name).
				Msg("event published")
			return nil
		},
	}
	ef.bind(cmd)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		count       int
		metricsAddr string
		under       string
	)
	cmd := &cobra.Command{
		Use:   "watch [subject]",
		Short: "Prints events received over NATS as JSON lines",
		Long: `Subscribes to subject (default: every target under the configured prefix)
and prints each decoded event. Records that fail to decode are logged and skipped.
With --under, only events addressed at that path or below it are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := relay.AllSubjects(a.cfg.SubjectPrefix)
			if len(args) == 1 {
				subject = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				srv := &http.Server{Addr: metricsAddr, Handler: observability.Handler(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
				log.Info().Str("addr", metricsAddr).Msg("serving metrics")
			}

			sub, err := relay.NewNATSSubscriber(a.cfg.Relay())
			if err != nil {
				return err
			}
			defer sub.Close()
			ch, cancel, err := sub.Subscribe(subject)
			if err != nil {
				return err
			}
			defer cancel()
			log.Info().Str("subject", subject).Msg("watching events")

			keep := underFilter(under)
			out := cmd.OutOrStdout()
			seen := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case d, ok := <-ch:
					if !ok {
						return nil
					}
					if d.Err != nil || !keep(d.Event) {
						continue
					}
					if err := printEventJSON(out, d.Event); err != nil {
						return err
					}
					seen++
					if count > 0 && seen >= count {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many events (0 = run until interrupted)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&under, "under", "", "only print events whose path is this path or a descendant")
	return cmd
}

// underFilter keeps events addressed at raw or below it. An empty or root
// path keeps everything.
func underFilter(raw string) func(event.Event) bool {
	prefix := path.Parse(raw)
	return func(ev event.Event) bool {
		return prefix.IsRoot() || ev.Path.HasPrefix(prefix)
	}
}
