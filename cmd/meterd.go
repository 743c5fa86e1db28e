package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"squish/internal/meter"
)

var (
	meterHost   string
	meterPort   int
	meterNotify string
)

var meterdCmd = &cobra.Command{
	Use:   "meterd [flags]",
	Short: "Serve the meter-reading API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		manager := meter.NewManager(
			map[string]string{"demo": meter.HashPassword("demo")},
			meter.SequentialMeters(50),
		)
		server := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", meterHost, meterPort),
			Handler: meter.NewServer(manager, logger).Routes(),
		}

		listener, err := net.Listen("tcp", server.Addr)
		if err != nil {
			return err
		}
		logger.Info("meter server listening", "addr", server.Addr)

		if meterNotify != "" {
			if err := os.WriteFile(meterNotify, []byte("\n"), 0o644); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- server.Serve(listener) }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)

		manager.Dump(logger)
		logger.Info("meter server shutdown")
		return nil
	},
}

func init() {
	meterdCmd.Flags().StringVar(&meterHost, "host", "localhost", "interface to bind")
	meterdCmd.Flags().IntVarP(&meterPort, "port", "p", 11002, "port to bind")
	meterdCmd.Flags().StringVar(&meterNotify, "notify", "", "file touched once the server is accepting connections")

	rootCmd.AddCommand(meterdCmd)
}
