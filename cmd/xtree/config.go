package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/observability"
)

const envPrefix = "XTREE_"

type config struct {
	Sets            int
	Ops             int
	Range           int
	ValidateEvery   int
	RandSeed        uint64
	SeedDir         string
	SeedFile        string
	DumpDir         string
	DumpFile        string
	Metrics         observability.MetricsExporterType
	MetricsAddr     string
	MetricsInterval time.Duration
	LogLevel        string
	LogEncoder      string
}

func defaultConfig() *config {
	return &config{
		Sets:            4,
		Ops:             10000,
		Range:           100000,
		ValidateEvery:   100,
		Metrics:         observability.NoneMetricsExporter,
		MetricsInterval: 10 * time.Second,
		LogLevel:        "INFO",
		LogEncoder:      "json",
	}
}

type lookupEnvFunc func(key string) (string, bool)

// envDefaults overrides the defaults by XTREE_* variables, the log level
// also accepts XLOG_LVL.
func envDefaults(cfg *config, lookup lookupEnvFunc) error {
	if lookup == nil {
		return nil
	}
	var merr error
	intVar := func(key string, p *int) {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				merr = multierr.Append(merr, fmt.Errorf("env %s%s: %w", envPrefix, key, err))
				return
			}
			*p = n
		}
	}
	strVar := func(key string, p *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*p = strings.TrimSpace(v)
		}
	}
	intVar("SETS", &cfg.Sets)
	intVar("OPS", &cfg.Ops)
	intVar("RANGE", &cfg.Range)
	intVar("VALIDATE", &cfg.ValidateEvery)
	if v, ok := lookup(envPrefix + "RAND_SEED"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			merr = multierr.Append(merr, fmt.Errorf("env %sRAND_SEED: %w", envPrefix, err))
		} else {
			cfg.RandSeed = n
		}
	}
	strVar("SEED_DIR", &cfg.SeedDir)
	strVar("SEED_FILE", &cfg.SeedFile)
	strVar("DUMP_DIR", &cfg.DumpDir)
	strVar("DUMP_FILE", &cfg.DumpFile)
	if v, ok := lookup(envPrefix + "METRICS"); ok {
		cfg.Metrics = observability.MetricsExporterType(strings.TrimSpace(v))
	}
	strVar("METRICS_ADDR", &cfg.MetricsAddr)
	if v, ok := lookup(envPrefix + "METRICS_INTERVAL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			merr = multierr.Append(merr, fmt.Errorf("env %sMETRICS_INTERVAL: %w", envPrefix, err))
		} else {
			cfg.MetricsInterval = d
		}
	}
	if v, ok := lookup("XLOG_LVL"); ok {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	strVar("LOG_LEVEL", &cfg.LogLevel)
	strVar("LOG_ENCODER", &cfg.LogEncoder)
	return merr
}

func (cfg *config) validate() error {
	var merr error
	if cfg.Sets <= 0 {
		merr = multierr.Append(merr, fmt.Errorf("sets must be positive, got %d", cfg.Sets))
	}
	if cfg.Ops < 0 {
		merr = multierr.Append(merr, fmt.Errorf("ops must not be negative, got %d", cfg.Ops))
	}
	if cfg.Range <= 0 {
		merr = multierr.Append(merr, fmt.Errorf("range must be positive, got %d", cfg.Range))
	}
	if cfg.ValidateEvery < 0 {
		merr = multierr.Append(merr, fmt.Errorf("validate must not be negative, got %d", cfg.ValidateEvery))
	}
	if (cfg.SeedDir == "") != (cfg.SeedFile == "") {
		merr = multierr.Append(merr, fmt.Errorf("seed-dir and seed-file must be set together"))
	}
	if (cfg.DumpDir == "") != (cfg.DumpFile == "") {
		merr = multierr.Append(merr, fmt.Errorf("dump-dir and dump-file must be set together"))
	}
	switch cfg.Metrics {
	case observability.NoneMetricsExporter,
		observability.ConsoleMetricsExporter,
		observability.PrometheusMetricsExporter:
	default:
		merr = multierr.Append(merr, fmt.Errorf("unknown metrics exporter %q", cfg.Metrics))
	}
	if cfg.MetricsAddr != "" && cfg.Metrics != observability.PrometheusMetricsExporter {
		merr = multierr.Append(merr, fmt.Errorf("metrics-addr requires the prometheus exporter"))
	}
	switch strings.ToLower(cfg.LogEncoder) {
	case "json", "text":
	default:
		merr = multierr.Append(merr, fmt.Errorf("unknown log encoder %q", cfg.LogEncoder))
	}
	return merr
}

// loadConfig resolves the defaults, then the environment, then the flags.
func loadConfig(args []string, lookup lookupEnvFunc) (*config, error) {
	cfg := defaultConfig()
	if err := envDefaults(cfg, lookup); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xtree] environment")
	}

	metrics := string(cfg.Metrics)
	fs := pflag.NewFlagSet("xtree", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.IntVarP(&cfg.Sets, "sets", "s", cfg.Sets, "parallel independent sets")
	fs.IntVarP(&cfg.Ops, "ops", "n", cfg.Ops, "random operations per set")
	fs.IntVarP(&cfg.Range, "range", "r", cfg.Range, "values are drawn from [0, range)")
	fs.IntVar(&cfg.ValidateEvery, "validate", cfg.ValidateEvery, "check the red-black invariants every N operations, 0 disables")
	fs.Uint64Var(&cfg.RandSeed, "rand-seed", cfg.RandSeed, "random seed, 0 picks one from the clock")
	fs.StringVar(&cfg.SeedDir, "seed-dir", cfg.SeedDir, "base directory of the seed file")
	fs.StringVar(&cfg.SeedFile, "seed-file", cfg.SeedFile, "newline separated integers loaded into every set")
	fs.StringVar(&cfg.DumpDir, "dump-dir", cfg.DumpDir, "base directory of the dump file")
	fs.StringVar(&cfg.DumpFile, "dump-file", cfg.DumpFile, "ascending dump of the first set")
	fs.StringVar(&metrics, "metrics", metrics, "metrics exporter: stdout, prometheus or none")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "listen address of the prometheus /metrics endpoint")
	fs.DurationVar(&cfg.MetricsInterval, "metrics-interval", cfg.MetricsInterval, "stdout metrics export interval")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "DEBUG, INFO, WARN or ERROR")
	fs.StringVar(&cfg.LogEncoder, "log-encoder", cfg.LogEncoder, "json or text")
	if err := fs.Parse(args); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xtree] flags")
	}
	cfg.Metrics = observability.MetricsExporterType(strings.ToLower(strings.TrimSpace(metrics)))

	if err := cfg.validate(); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[xtree] config")
	}
	return cfg, nil
}
