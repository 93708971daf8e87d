package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the coveredcalld node",
		Long: `Start the node, which provides:
- HTTP JSON-RPC on /
- WebSocket commands and transaction streams on /ws

The ledger is created from the genesis configuration on first start.
This is the default command when no subcommand is specified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return opts.serve(ctx, listen, nil)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides rpc.listen)")
	return cmd
}

// serve runs the node until ctx is done. ready, when not nil, receives the
// bound address once the listener is open.
func (o *rootOptions) serve(ctx context.Context, listen string, ready chan<- string) error {
	container, node, err := o.openNode()
	if err != nil {
		return err
	}
	defer container.Close()

	cfg := node.Config.RPC
	if listen == "" {
		listen = cfg.Listen
	}
	log := node.Logger.WithField("component", "server")

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:      node.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.WithFields(logrus.Fields{
		"listen":    ln.Addr().String(),
		"websocket": cfg.WebSocket,
		"policy":    node.Config.Engine.SettlementPolicy,
	}).Info("coveredcalld started")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		if node.WebSocket != nil {
			node.WebSocket.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
