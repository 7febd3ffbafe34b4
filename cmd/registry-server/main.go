package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruteri/synbio-provenance-registry/api/auth"
	"github.com/ruteri/synbio-provenance-registry/api/handlers"
	"github.com/ruteri/synbio-provenance-registry/api/servers"
	"github.com/ruteri/synbio-provenance-registry/cmd/flags"
	"github.com/ruteri/synbio-provenance-registry/common"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/ruteri/synbio-provenance-registry/metrics"
	"github.com/ruteri/synbio-provenance-registry/registry"
	"github.com/ruteri/synbio-provenance-registry/storage"
	"github.com/urfave/cli/v2"
)

var serverFlags = append(append([]cli.Flag{
	flags.AdminFlag,
	flags.StorageFlag,
	flags.RestoreFlag,
	flags.SnapshotIntervalFlag,
	flags.StrictSequenceRefsFlag,
	flags.MaxClockSkewFlag,
}, flags.ServerFlags...), flags.LogFlags...)

func main() {
	app := &cli.App{
		Name:   "registry-server",
		Usage:  "Serve the verifier, sequence and design registries over HTTP",
		Flags:  serverFlags,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	regCfg, err := flags.ConfigureRegistries(cCtx)
	if err != nil {
		logger.Error("Invalid registry configuration", "err", err)
		return err
	}
	cfg := flags.ConfigureServer(cCtx, logger)

	metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
	if err != nil {
		logger.Error("Failed to create metrics server", "err", err)
		return err
	}

	var snapshotter *storage.Snapshotter
	observers := interfaces.Observers{metricsSrv}

	if len(regCfg.StorageLocations) > 0 {
		backend, err := storage.NewStorageBackendFactory(logger).CreateMultiBackend(regCfg.StorageLocations)
		if err != nil {
			logger.Error("Failed to configure snapshot storage", "err", err)
			return err
		}
		if !backend.Available(cCtx.Context) {
			logger.Warn("Snapshot storage is not available yet", "backend", backend.Name())
		}
		snapshotter = storage.NewSnapshotter(backend, logger, metricsSrv)
		observers = append(observers, snapshotter)
	}

	opts := []registry.Option{registry.WithObserver(observers)}

	var regs *registry.Registries
	if regCfg.Restore != nil {
		regs, err = snapshotter.Restore(cCtx.Context, *regCfg.Restore, regCfg.Administrator, regCfg.StrictSequenceRefs, opts...)
		if err != nil {
			logger.Error("Failed to restore registries", "err", err)
			return err
		}
		metricsSrv.TrackAllocatedIDs(regs)
	} else {
		regs = registry.New(regCfg.Administrator, regCfg.StrictSequenceRefs, opts...)
		if snapshotter != nil {
			snapshotter.Track(regs)
		}
	}
	logger.Info("Registries ready", "administrator", regCfg.Administrator.String(), "strictSequenceRefs", regCfg.StrictSequenceRefs)

	authn := auth.NewAuthenticator(cfg.MaxClockSkew, logger)
	handler := handlers.NewHandler(regs.Verifiers, regs.Sequences, regs.Designs, authn, logger)

	server, err := servers.New(cfg, metricsSrv, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if snapshotter != nil && regCfg.SnapshotInterval > 0 {
		go snapshotter.Run(ctx, regCfg.SnapshotInterval)
	}

	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	cancel()

	if snapshotter != nil {
		storeCtx, storeCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer storeCancel()
		if id, stored, err := snapshotter.StoreIfDirty(storeCtx); err != nil {
			logger.Error("Final snapshot failed", "err", err)
		} else if stored {
			logger.Info("Final snapshot stored", "contentID", id.String())
		} else if last, ok := snapshotter.LastStored(); ok {
			logger.Info("State unchanged since last snapshot", "contentID", last.String())
		}
	}

	logger.Info("Server shutdown complete")
	return nil
}
