package handlers

import (
	"context"
	"errors"
	"os"

	"github.com/provsync/provsync/internal/compute"
	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
	"github.com/provsync/provsync/internal/metrics"
	"github.com/provsync/provsync/internal/ui"
)

// WaitOptions carries the arguments of the wait command.
type WaitOptions struct {
	ConfigPath    string
	MetricsListen string
}

// workerInspector reports the cloud-side state of the provisioner instance.
type workerInspector interface {
	WorkerState(ctx context.Context, name string) (string, error)
}

// newWorkerInspector creates the compute inspector - can be replaced in tests.
var newWorkerInspector = func(token string) workerInspector {
	return compute.NewInspector(token)
}

// Wait handles the wait command.
//
// It polls the status document until the provisioner writes its terminal
// status or the wait ceiling elapses. Placeholder-only polls do not count
// toward the ceiling; the provisioner is still booting. On timeout the
// returned error carries the document coordinates, the last observed
// status, and (when cloud credentials are available) the current state of
// the provisioner instance.
func Wait(ctx context.Context, opts WaitOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	timeouts := config.LoadTimeouts()

	token, err := resolveToken(ctx, "", cfg.CredentialCommand, timeouts)
	if err != nil {
		return err
	}

	ref := docstore.Ref{
		Project:    cfg.Store.Project,
		Database:   cfg.Store.Database,
		Collection: cfg.Store.Collection,
	}
	client := newStoreClient(cfg.Store.Endpoint, token, storeOptions(timeouts)...)

	observer := coordinate.MultiObserver{
		coordinate.NewLogObserver(logger),
		ui.NewStatusRenderer(),
	}

	pollerOpts := []coordinate.PollerOption{
		coordinate.WithTerminalStatus(cfg.TerminalStatus),
		coordinate.WithInterval(timeouts.PollInterval),
		coordinate.WithCeiling(timeouts.WaitCeiling),
		coordinate.WithWorkerInstance(cfg.WorkerInstance),
		coordinate.WithObserver(observer),
	}

	if opts.MetricsListen != "" {
		m := metrics.NewWaitMetrics()
		pollerOpts = append(pollerOpts, coordinate.WithRecorder(m))

		go func() {
			if err := m.Serve(ctx, opts.MetricsListen); err != nil {
				logger.Error(err, "metrics endpoint failed", "addr", opts.MetricsListen)
			}
		}()
	}

	poller := coordinate.NewPoller(client, ref, pollerOpts...)

	err = poller.Wait(ctx)

	var timeout *coordinate.TimeoutError
	if errors.As(err, &timeout) {
		enrichWorkerState(ctx, timeout, cfg.WorkerInstance)
	}
	return err
}

// enrichWorkerState attaches the cloud-side instance state to a timeout so
// the operator can tell a hung provisioner from one that never booted.
// Missing credentials or lookup failures leave the error as is.
func enrichWorkerState(ctx context.Context, timeout *coordinate.TimeoutError, workerInstance string) {
	token := os.Getenv("HCLOUD_TOKEN")
	if token == "" || workerInstance == "" {
		return
	}

	state, err := newWorkerInspector(token).WorkerState(ctx, workerInstance)
	if err != nil {
		logger.Error(err, "could not inspect worker instance", "instance", workerInstance)
		return
	}
	timeout.WorkerState = state
}
