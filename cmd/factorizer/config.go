package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/Krishna8167/memoslot/internal/config"
)

// Config drives one factorizer run. Environment variables set the
// defaults; command-line flags override them.
type Config struct {
	Workers       int           `env:"FACTORIZER_WORKERS"        envDefault:"8"`
	Requests      int           `env:"FACTORIZER_REQUESTS"       envDefault:"10000"`
	Distinct      int           `env:"FACTORIZER_DISTINCT"       envDefault:"4"`
	Burst         int           `env:"FACTORIZER_BURST"          envDefault:"16"`
	Base          uint64        `env:"FACTORIZER_BASE"           envDefault:"600851475143"`
	Coalesce      bool          `env:"FACTORIZER_COALESCE"       envDefault:"false"`
	StatsInterval time.Duration `env:"FACTORIZER_STATS_INTERVAL" envDefault:"0s"`
	Timeout       time.Duration `env:"FACTORIZER_TIMEOUT"        envDefault:"0s"`
	LogLevel      string        `env:"LOG_LEVEL"                 envDefault:"info"`
}

func loadConfig(args []string) (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}

	fs := pflag.NewFlagSet("factorizer", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent request workers")
	fs.IntVarP(&cfg.Requests, "requests", "n", cfg.Requests, "requests per worker")
	fs.IntVarP(&cfg.Distinct, "distinct", "d", cfg.Distinct, "number of distinct inputs cycled through")
	fs.IntVarP(&cfg.Burst, "burst", "b", cfg.Burst, "consecutive requests per input before moving on")
	fs.Uint64Var(&cfg.Base, "base", cfg.Base, "first input; inputs are base, base+1, ...")
	fs.BoolVarP(&cfg.Coalesce, "coalesce", "c", cfg.Coalesce, "share in-flight computations for the same input")
	fs.DurationVar(&cfg.StatsInterval, "stats-interval", cfg.StatsInterval, "log cache stats at this period (0 disables)")
	fs.DurationVarP(&cfg.Timeout, "timeout", "t", cfg.Timeout, "per-request timeout (0 disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("factorizer: workers must be positive, got %d", c.Workers)
	case c.Requests < 0:
		return fmt.Errorf("factorizer: requests must not be negative, got %d", c.Requests)
	case c.Distinct < 1:
		return fmt.Errorf("factorizer: distinct must be positive, got %d", c.Distinct)
	case c.Burst < 1:
		return fmt.Errorf("factorizer: burst must be positive, got %d", c.Burst)
	}
	return nil
}
