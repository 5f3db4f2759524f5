// Package appconfig loads this facade's own process configuration
// (listen addresses, RPC backend endpoints, timing overrides) — distinct
// from internal/daemonconfig, which parses the spawned daemon's own
// key=value config file. It is grounded on pkg/config/config.go's
// viper-based YAML-plus-environment loader, mapped onto this facade's
// settings instead of the teacher's network/consensus/VM groups.
package appconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the unified process configuration for cmd/qtumnode.
type Config struct {
	Supervisor struct {
		Exec            string `mapstructure:"exec"`
		ConfPath        string `mapstructure:"conf_path"`
		DataDir         string `mapstructure:"data_dir"`
		Testnet         bool   `mapstructure:"testnet"`
		Regtest         bool   `mapstructure:"regtest"`
		ShutdownTimeout string `mapstructure:"shutdown_timeout"`
	} `mapstructure:"supervisor"`

	RPC struct {
		Endpoints []string `mapstructure:"endpoints"`
	} `mapstructure:"rpc"`

	Zmq struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"zmq"`

	Facade struct {
		MaxTxids               int `mapstructure:"max_txids"`
		MaxTransactionHistory  int `mapstructure:"max_transaction_history"`
		MaxAddressesQuery      int `mapstructure:"max_addresses_query"`
		TransactionConcurrency int `mapstructure:"transaction_concurrency"`
	} `mapstructure:"facade"`

	Cache struct {
		Large int `mapstructure:"large"`
		Small int `mapstructure:"small"`
		Dedup int `mapstructure:"dedup"`
	} `mapstructure:"cache"`

	TipTracker struct {
		QuietWindow          string  `mapstructure:"quiet_window"`
		TipUpdateInterval    string  `mapstructure:"tip_update_interval"`
		ZmqSubscribeProgress float64 `mapstructure:"zmq_subscribe_progress"`
	} `mapstructure:"tip_tracker"`

	Admin struct {
		ListenAddr string `mapstructure:"listen_addr"`
	} `mapstructure:"admin"`

	AddressPrefix string `mapstructure:"address_prefix"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("supervisor.exec", "qtumd")
	v.SetDefault("supervisor.conf_path", "qtum.conf")
	v.SetDefault("supervisor.data_dir", ".qtum")
	v.SetDefault("supervisor.shutdown_timeout", "15s")
	v.SetDefault("rpc.endpoints", []string{"http://127.0.0.1:3889"})
	v.SetDefault("zmq.endpoint", "tcp://127.0.0.1:28332")
	v.SetDefault("facade.max_txids", 1000)
	v.SetDefault("facade.max_transaction_history", 50)
	v.SetDefault("facade.max_addresses_query", 10000)
	v.SetDefault("facade.transaction_concurrency", 5)
	v.SetDefault("cache.large", 50000)
	v.SetDefault("cache.small", 144)
	v.SetDefault("cache.dedup", 50)
	v.SetDefault("tip_tracker.quiet_window", "1s")
	v.SetDefault("tip_tracker.tip_update_interval", "15s")
	v.SetDefault("tip_tracker.zmq_subscribe_progress", 0.9999)
	v.SetDefault("admin.listen_addr", ":8090")
	v.SetDefault("address_prefix", "q")
	v.SetDefault("logging.level", "info")
}

// Load reads configuration from path (if non-empty), layering
// environment variable overrides prefixed QTUMNODE_ on top (e.g.
// QTUMNODE_RPC_ENDPOINTS). A missing optional path is not an error;
// defaults plus environment variables alone are a valid configuration.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("appconfig: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("QTUMNODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("appconfig: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("appconfig: unmarshal: %w", err)
	}
	return &cfg, nil
}

// Duration parses s, falling back to def on empty or invalid input.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
