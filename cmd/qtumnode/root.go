package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/qtum-project/qtumnode-facade/internal/addressdecoder"
	"github.com/qtum-project/qtumnode-facade/internal/adminserver"
	"github.com/qtum-project/qtumnode-facade/internal/appconfig"
	"github.com/qtum-project/qtumnode-facade/internal/daemonconfig"
	"github.com/qtum-project/qtumnode-facade/internal/events"
	"github.com/qtum-project/qtumnode-facade/internal/lrucache"
	"github.com/qtum-project/qtumnode-facade/internal/metrics"
	"github.com/qtum-project/qtumnode-facade/internal/rpcpool"
	"github.com/qtum-project/qtumnode-facade/internal/subscription"
	"github.com/qtum-project/qtumnode-facade/internal/supervisor"
	"github.com/qtum-project/qtumnode-facade/internal/tiptracker"
	"github.com/qtum-project/qtumnode-facade/internal/zmqingest"
	"github.com/qtum-project/qtumnode-facade/facade"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "qtumnode",
	Short: "Supervised query facade for a qtumd/bitcoind-style daemon",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to qtumnode.yaml (optional, defaults + env vars otherwise)")
	RegisterStart(rootCmd)
	RegisterStatus(rootCmd)
	RegisterStop(rootCmd)
}

// app bundles every collaborator wired together for one run of the
// supervised facade, following cmd/cli/master_node.go's
// lazy-package-singleton convention (ensureMaster / masterCmd).
type app struct {
	cfg        *appconfig.Config
	log        *logrus.Logger
	metrics    *metrics.Metrics
	cache      *lrucache.Set
	registry   *subscription.Registry
	pool       *rpcpool.Pool
	tracker    *tiptracker.Tracker
	ingest     *zmqingest.Ingest
	facade     *facade.Facade
	supervisor *supervisor.Supervisor
	admin      *adminserver.Server
}

var current *app

// ensureApp lazily constructs the singleton app from configPath, the
// same guard shape as ensureMaster in the teacher's CLI package.
func ensureApp(cmd *cobra.Command, args []string) error {
	if current != nil {
		return nil
	}
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	current = a
	return nil
}

func buildApp(cfg *appconfig.Config) (*app, error) {
	log := logrus.New()

	daemonCfg, err := daemonconfig.Load(daemonconfig.Defaults(), cfg.Supervisor.ConfPath, "")
	if err != nil {
		return nil, fmt.Errorf("qtumnode: daemon config: %w", err)
	}
	if daemonCfg.ReindexRequested() {
		log.Warn("reindex=1 set in daemon config; initial readiness probe may take longer than usual")
	}

	m := metrics.New()
	cache := lrucache.NewSet(lrucache.Capacities{
		Large: cfg.Cache.Large,
		Small: cfg.Cache.Small,
		Dedup: cfg.Cache.Dedup,
	})
	registry := subscription.New(addressdecoder.NewStub(cfg.AddressPrefix))

	var backends []*rpcpool.Backend
	for _, endpoint := range cfg.RPC.Endpoints {
		b, err := rpcpool.DialBackend(context.Background(), endpoint)
		if err != nil {
			return nil, fmt.Errorf("qtumnode: dial rpc backend %s: %w", endpoint, err)
		}
		backends = append(backends, b)
	}
	pool, err := rpcpool.New(backends)
	if err != nil {
		return nil, err
	}

	tracker := tiptracker.New(tiptracker.Options{
		QuietWindow:          appconfig.Duration(cfg.TipTracker.QuietWindow, 0),
		TipUpdateInterval:    appconfig.Duration(cfg.TipTracker.TipUpdateInterval, 0),
		ZmqSubscribeProgress: cfg.TipTracker.ZmqSubscribeProgress,
	}, registry, cache, tipHeightFetcher(pool), tipProgressFetcher(pool))
	tracker.SetMetrics(m)

	f := facade.New(facade.Options{
		MaxTxids:               cfg.Facade.MaxTxids,
		MaxTransactionHistory:  cfg.Facade.MaxTransactionHistory,
		MaxAddressesQuery:      cfg.Facade.MaxAddressesQuery,
		TransactionConcurrency: cfg.Facade.TransactionConcurrency,
	}, pool, cache, registry, tracker)
	f.SetMetrics(m)

	ingest := zmqingest.New(zmqingest.Options{}, registry, cache, addressdecoder.NewStub(cfg.AddressPrefix), tracker, f)

	sup := supervisor.New(supervisor.Options{
		Exec:            cfg.Supervisor.Exec,
		ConfPath:        cfg.Supervisor.ConfPath,
		DataDir:         cfg.Supervisor.DataDir,
		Testnet:         cfg.Supervisor.Testnet,
		Regtest:         cfg.Supervisor.Regtest,
		RPCEndpoint:     firstOrEmpty(cfg.RPC.Endpoints),
		ShutdownTimeout: appconfig.Duration(cfg.Supervisor.ShutdownTimeout, 0),
	}, loadTipProbe(pool), func(ctx context.Context) {
		registry.Publish(events.TopicReady, nil)
		go func() {
			_ = tracker.WaitUntilSyncedThenSubscribe(ctx, func(ctx context.Context) {
				ingest.RunWithReconnect(ctx, func(ctx context.Context) (zmqingest.Socket, error) {
					return zmqingest.DialSub(ctx, cfg.Zmq.Endpoint)
				})
			})
		}()
	})

	admin := adminserver.New(cfg.Admin.ListenAddr, m, registry, func() string { return sup.State().String() }, tracker.TipHeight)

	return &app{
		cfg: cfg, log: log, metrics: m, cache: cache, registry: registry,
		pool: pool, tracker: tracker, ingest: ingest, facade: f,
		supervisor: sup, admin: admin,
	}, nil
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func tipHeightFetcher(pool *rpcpool.Pool) tiptracker.HeightFetcher {
	return func(ctx context.Context, hash string) (uint64, error) {
		var block struct {
			Height uint64 `json:"height"`
		}
		if err := pool.TryAll(ctx, func(ctx context.Context, b *rpcpool.Backend) error {
			return b.Client.CallContext(ctx, &block, "getBlock", hash, 1)
		}); err != nil {
			return 0, err
		}
		return block.Height, nil
	}
}

func tipProgressFetcher(pool *rpcpool.Pool) tiptracker.ProgressFetcher {
	return func(ctx context.Context) (float64, error) {
		var info struct {
			VerificationProgress float64 `json:"verificationprogress"`
		}
		if err := pool.TryAll(ctx, func(ctx context.Context, b *rpcpool.Backend) error {
			return b.Client.CallContext(ctx, &info, "getBlockchainInfo")
		}); err != nil {
			return 0, err
		}
		return info.VerificationProgress, nil
	}
}

func loadTipProbe(pool *rpcpool.Pool) supervisor.LoadTipFunc {
	return func(ctx context.Context) error {
		var hash string
		return pool.TryAll(ctx, func(ctx context.Context, b *rpcpool.Backend) error {
			return b.Client.CallContext(ctx, &hash, "getBestBlockHash")
		})
	}
}
