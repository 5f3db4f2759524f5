package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:               "start",
	Short:             "Spawn the daemon, ingest its ZMQ feed, and serve the query facade",
	Args:              cobra.NoArgs,
	PersistentPreRunE: ensureApp,
	RunE:              runStart,
}

// RegisterStart adds the start command to root.
func RegisterStart(root *cobra.Command) { root.AddCommand(startCmd) }

func pidFilePath(dataDir string) string {
	return dataDir + string(os.PathSeparator) + "qtumnode.pid"
}

func runStart(cmd *cobra.Command, args []string) error {
	a := current
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := os.WriteFile(pidFilePath(a.cfg.Supervisor.DataDir), []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		a.log.WithError(err).Warn("failed to write pid file")
	}
	defer os.Remove(pidFilePath(a.cfg.Supervisor.DataDir))

	go func() {
		if err := a.admin.ListenAndServe(); err != nil {
			a.log.WithError(err).Error("admin server exited")
		}
	}()

	if err := a.supervisor.Start(ctx); err != nil {
		return fmt.Errorf("qtumnode: start: %w", err)
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shutdownErr := a.supervisor.Stop()
	_ = a.admin.Shutdown(context.Background())
	return shutdownErr
}
