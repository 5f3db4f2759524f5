package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/qtum-project/qtumnode-facade/internal/appconfig"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running qtumnode instance's admin status endpoint",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// RegisterStatus adds the status command to root.
func RegisterStatus(root *cobra.Command) { root.AddCommand(statusCmd) }

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + trimListenAddr(cfg.Admin.ListenAddr) + "/status")
	if err != nil {
		return fmt.Errorf("qtumnode: status request: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("qtumnode: decode status response: %w", err)
	}
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// trimListenAddr turns a bind address like ":8090" into a dialable
// loopback host:port like "127.0.0.1:8090".
func trimListenAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
