package flags

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/synbio-provenance-registry/api"
	"github.com/ruteri/synbio-provenance-registry/api/auth"
	"github.com/ruteri/synbio-provenance-registry/common"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
		Version: common.Version,
	})

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		MaxClockSkew:             cCtx.Duration(MaxClockSkewFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

func ConfigureRegistries(cCtx *cli.Context) (*api.RegistryConfig, error) {
	adminHex := cCtx.String(AdminFlag.Name)
	if adminHex == "" {
		return nil, fmt.Errorf("--%s is required", AdminFlag.Name)
	}
	admin, err := interfaces.NewPrincipalFromHex(adminHex)
	if err != nil {
		return nil, fmt.Errorf("invalid administrator address: %w", err)
	}

	cfg := &api.RegistryConfig{
		Administrator:      admin,
		StrictSequenceRefs: cCtx.Bool(StrictSequenceRefsFlag.Name),
		StorageLocations:   cCtx.StringSlice(StorageFlag.Name),
		SnapshotInterval:   cCtx.Duration(SnapshotIntervalFlag.Name),
	}

	if restore := cCtx.String(RestoreFlag.Name); restore != "" {
		if len(cfg.StorageLocations) == 0 {
			return nil, errors.New("--restore needs at least one --storage location")
		}
		id, err := interfaces.NewContentIDFromHex(restore)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot id: %w", err)
		}
		cfg.Restore = &id
	}
	return cfg, nil
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: []string{"SYNBIO_LISTEN_ADDR"},
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics, empty to disable",
	EnvVars: []string{"SYNBIO_METRICS_ADDR"},
}

var AdminFlag = &cli.StringFlag{
	Name:    "admin",
	Usage:   "0x-prefixed address of the verifier registry administrator",
	EnvVars: []string{"SYNBIO_ADMIN"},
}

var StorageFlag = &cli.StringSliceFlag{
	Name:    "storage",
	Usage:   "snapshot storage URI (file://, s3://, ipfs://), repeat to replicate",
	EnvVars: []string{"SYNBIO_STORAGE"},
}

var RestoreFlag = &cli.StringFlag{
	Name:    "restore",
	Usage:   "hex content id of a snapshot to restore on startup",
	EnvVars: []string{"SYNBIO_RESTORE"},
}

var SnapshotIntervalFlag = &cli.DurationFlag{
	Name:    "snapshot-interval",
	Value:   time.Minute,
	Usage:   "how often to store a snapshot when state changed, 0 to only store on shutdown",
	EnvVars: []string{"SYNBIO_SNAPSHOT_INTERVAL"},
}

var StrictSequenceRefsFlag = &cli.BoolFlag{
	Name:    "strict-sequence-refs",
	Value:   false,
	Usage:   "reject design sequence references to unregistered sequences",
	EnvVars: []string{"SYNBIO_STRICT_SEQUENCE_REFS"},
}

var MaxClockSkewFlag = &cli.DurationFlag{
	Name:    "max-clock-skew",
	Value:   auth.DefaultMaxClockSkew,
	Usage:   "maximum accepted difference between a request timestamp and server time",
	EnvVars: []string{"SYNBIO_MAX_CLOCK_SKEW"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	Usage:   "log in JSON format",
	EnvVars: []string{"SYNBIO_LOG_JSON"},
}
var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	Usage:   "log debug messages",
	EnvVars: []string{"SYNBIO_LOG_DEBUG"},
}
var LogUidFlag = &cli.BoolFlag{
	Name:    "log-uid",
	Value:   false,
	Usage:   "generate a uuid and add to all log messages",
	EnvVars: []string{"SYNBIO_LOG_UID"},
}
var LogServiceFlag = &cli.StringFlag{
	Name:    "log-service",
	Value:   common.PackageName,
	Usage:   "add 'service' tag to logs",
	EnvVars: []string{"SYNBIO_LOG_SERVICE"},
}

var PprofFlag = &cli.BoolFlag{
	Name:    "pprof",
	Value:   false,
	Usage:   "enable pprof debug endpoint",
	EnvVars: []string{"SYNBIO_PPROF"},
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:    "drain-seconds",
	Value:   45,
	Usage:   "seconds to wait in drain HTTP request",
	EnvVars: []string{"SYNBIO_DRAIN_SECONDS"},
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	MetricsAddrFlag,
	PprofFlag,
	DrainSecondsFlag,
}
