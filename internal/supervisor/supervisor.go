// Package supervisor spawns, health-probes, and restarts the qtumd/
// bitcoind child process (SPEC_FULL.md §4.5). It is grounded on the
// teacher's core/mining_node.go (context.WithCancel + goroutine
// lifecycle) and core/base_node.go (ListenAndServe/Close shape), using
// os/exec for spawn and github.com/sirupsen/logrus for structured
// state-transition logging, matching core/mining_node.go's
// logrus.New() per-component logger convention.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qtum-project/qtumnode-facade/internal/rpcerrors"
)

// State is one step of the supervisor's lifecycle state machine
// (SPEC_FULL.md §4.5): Spawning -> Probing -> Subscribing -> Ready ->
// (Exited -> Spawning), terminal Stopped only via host-initiated Stop.
type State int

const (
	StateSpawning State = iota
	StateProbing
	StateSubscribing
	StateReady
	StateExited
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateProbing:
		return "probing"
	case StateSubscribing:
		return "subscribing"
	case StateReady:
		return "ready"
	case StateExited:
		return "exited"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures spawn behaviour and the SPEC_FULL.md §6 timing
// defaults.
type Options struct {
	Exec               string
	ConfPath           string
	DataDir            string
	Testnet            bool
	Regtest            bool
	RPCEndpoint        string
	SpawnStopTime      time.Duration // default 10s
	SpawnRestartTime   time.Duration // default 5s
	StartRetryInterval time.Duration // default 5s
	StartRetryAttempts int           // default 60
	ShutdownTimeout    time.Duration // default 15s
	ReindexWait        time.Duration // default 10s
}

func (o Options) withDefaults() Options {
	if o.SpawnStopTime <= 0 {
		o.SpawnStopTime = 10 * time.Second
	}
	if o.SpawnRestartTime <= 0 {
		o.SpawnRestartTime = 5 * time.Second
	}
	if o.StartRetryInterval <= 0 {
		o.StartRetryInterval = 5 * time.Second
	}
	if o.StartRetryAttempts <= 0 {
		o.StartRetryAttempts = 60
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 15 * time.Second
	}
	if o.ReindexWait <= 0 {
		o.ReindexWait = 10 * time.Second
	}
	return o
}

// LoadTipFunc probes the daemon for readiness, e.g. by calling
// getbestblockhash through the RPC pool. It must return a non-nil error
// until the daemon is ready to serve.
type LoadTipFunc func(ctx context.Context) error

// OnReadyFunc is invoked each time LoadTipFunc succeeds after a spawn:
// once on Start, and again after every automatic restart.
type OnReadyFunc func(ctx context.Context)

// Supervisor drives one daemon child process through its lifecycle.
type Supervisor struct {
	opts   Options
	log    *logrus.Logger
	loadTip LoadTipFunc
	onReady OnReadyFunc

	mu      sync.Mutex
	state   State
	cmd     *exec.Cmd
	stopped atomic.Bool
}

// New constructs a Supervisor. loadTip and onReady must be non-nil.
func New(opts Options, loadTip LoadTipFunc, onReady OnReadyFunc) *Supervisor {
	return &Supervisor{
		opts:    opts.withDefaults(),
		log:     logrus.New(),
		loadTip: loadTip,
		onReady: onReady,
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"state": st.String(), "rpcEndpoint": s.opts.RPCEndpoint}).Info("supervisor state transition")
}

// Stopping reports whether Stop has been called; retry/poll loops
// observe this and abort with rpcerrors.ErrStopping.
func (s *Supervisor) Stopping() bool { return s.stopped.Load() }

// Start stops any already-running instance found via the datadir's PID
// file, spawns the daemon, retries LoadTipFunc until it succeeds (or
// the host stops), and transitions through Probing -> Subscribing ->
// Ready. onReady runs after readiness is confirmed, and again after each
// automatic restart.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := s.stopExistingInstance(ctx); err != nil {
		return err
	}
	return s.spawnAndProbe(ctx)
}

func (s *Supervisor) pidFilePath() string {
	return s.opts.DataDir + string(os.PathSeparator) + "qtumd.pid"
}

// stopExistingInstance sends SIGINT to any PID recorded in the
// datadir's PID file and polls every SpawnStopTime until the process is
// gone. ESRCH (process already gone) is treated as success.
func (s *Supervisor) stopExistingInstance(ctx context.Context) error {
	raw, err := os.ReadFile(s.pidFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("supervisor: read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("supervisor: parse pid file: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.SIGINT); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("supervisor: signal existing instance: %w", err)
	}

	ticker := time.NewTicker(s.opts.SpawnStopTime)
	defer ticker.Stop()
	for {
		if err := proc.Signal(syscall.Signal(0)); err != nil {
			return nil // process gone
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) spawnArgs() []string {
	args := []string{"--conf=" + s.opts.ConfPath, "--datadir=" + s.opts.DataDir}
	if s.opts.Testnet {
		args = append(args, "--testnet")
	}
	if s.opts.Regtest {
		args = append(args, "--regtest")
	}
	return args
}

func (s *Supervisor) spawnAndProbe(ctx context.Context) error {
	s.setState(StateSpawning)
	cmd := exec.Command(s.opts.Exec, s.spawnArgs()...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("supervisor: spawn %s: %w", s.opts.Exec, err)
	}
	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	go s.watchExit(ctx, cmd)

	s.setState(StateProbing)
	if err := s.retryLoadTip(ctx); err != nil {
		return err
	}

	s.setState(StateSubscribing)
	s.onReady(ctx)
	s.setState(StateReady)
	return nil
}

func (s *Supervisor) retryLoadTip(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < s.opts.StartRetryAttempts; attempt++ {
		if s.Stopping() {
			return rpcerrors.ErrStopping
		}
		if err := s.loadTip(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.StartRetryInterval):
		}
	}
	return fmt.Errorf("supervisor: loadTip did not succeed after %d attempts: %w", s.opts.StartRetryAttempts, lastErr)
}

// watchExit blocks for the child's exit and, unless Stop was called,
// schedules a restart after SpawnRestartTime.
func (s *Supervisor) watchExit(ctx context.Context, cmd *exec.Cmd) {
	err := cmd.Wait()
	if s.Stopping() {
		s.setState(StateStopped)
		return
	}
	s.log.WithFields(logrus.Fields{"error": err}).Warn("daemon exited unexpectedly")
	s.setState(StateExited)

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.opts.SpawnRestartTime):
	}
	if s.Stopping() {
		return
	}
	if err := s.spawnAndProbe(ctx); err != nil {
		s.log.WithFields(logrus.Fields{"error": err}).Error("restart failed")
	}
}

// Stop sets the stopping flag, signals the child, and waits up to
// ShutdownTimeout for it to exit. A nonzero exit code or an exceeded
// timeout is a fatal SupervisorError.
func (s *Supervisor) Stop() error {
	s.stopped.Store(true)

	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		s.setState(StateStopped)
		return nil
	}

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil && !errors.Is(err, os.ErrProcessDone) && !errors.Is(err, syscall.ESRCH) {
		return rpcerrors.NewSupervisorError("signal child: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		s.setState(StateStopped)
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && exitErr.ExitCode() != 0 {
				return rpcerrors.NewSupervisorError("child exited with code %d during orderly stop", exitErr.ExitCode())
			}
		}
		return nil
	case <-time.After(s.opts.ShutdownTimeout):
		return rpcerrors.NewSupervisorError("child did not exit within %s", s.opts.ShutdownTimeout)
	}
}
