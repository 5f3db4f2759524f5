package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qtum-project/qtumnode-facade/internal/appconfig"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Signal a running qtumnode instance to shut down",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

// RegisterStop adds the stop command to root.
func RegisterStop(root *cobra.Command) { root.AddCommand(stopCmd) }

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(pidFilePath(cfg.Supervisor.DataDir))
	if err != nil {
		return fmt.Errorf("qtumnode: no running instance found in %s: %w", cfg.Supervisor.DataDir, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("qtumnode: parse pid file: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("qtumnode: find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("qtumnode: signal process %d: %w", pid, err)
	}
	fmt.Printf("sent shutdown signal to pid %d\n", pid)
	return nil
}
