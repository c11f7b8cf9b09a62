// Package config loads the engine's runtime configuration with viper,
// following the teacher pack's convention (viper is already wired for
// every pack repo that reads YAML/env config) of a single typed struct
// populated by Unmarshal rather than scattered os.Getenv calls.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level typed configuration, covering every option
// listed in spec.md §9.
type Config struct {
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Topology  TopologyConfig  `mapstructure:"topology"`
	Arb       ArbConfig       `mapstructure:"arb"`
	ALT       ALTConfig       `mapstructure:"alt"`
	RPC       RPCConfig       `mapstructure:"rpc"`
	Bundle    BundleConfig    `mapstructure:"bundle"`
	Log       LogConfig       `mapstructure:"log"`
}

type IngestConfig struct {
	Endpoint           string        `mapstructure:"endpoint"`
	StallTimeout       time.Duration `mapstructure:"stall_timeout"`
	ReconnectBackoffMin time.Duration `mapstructure:"reconnect_backoff_min"`
	ReconnectBackoffMax time.Duration `mapstructure:"reconnect_backoff_max"`
}

type TopologyConfig struct {
	TickArrayRadius   int           `mapstructure:"tick_array_radius"`
	BinArrayRadius    int           `mapstructure:"bin_array_radius"`
	BoundaryBuffer    int           `mapstructure:"boundary_buffer"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	FetchConcurrency  int           `mapstructure:"fetch_concurrency"`
	OrphanTTL         time.Duration `mapstructure:"orphan_ttl"`
}

type ArbConfig struct {
	MinCandidateSpreadBps int           `mapstructure:"min_candidate_spread_bps"`
	DebounceWindow        time.Duration `mapstructure:"debounce_window"`
	DustThresholdLamports int64         `mapstructure:"dust_threshold_lamports"`
	StaleThresholdMs      int           `mapstructure:"stale_threshold_ms"`
}

type ALTConfig struct {
	HotlistPath  string `mapstructure:"hotlist_path"`
	BootstrapWarm bool  `mapstructure:"bootstrap_warm"`
}

type RPCConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	RateLimitRps   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type BundleConfig struct {
	TipLamports   uint64 `mapstructure:"tip_lamports"`
	JitoEndpoint  string `mapstructure:"jito_endpoint"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Default returns a Config populated with the values spec.md names as
// typical (3 for radii, 30s stream stall, 1s/30s backoff bounds, etc.).
func Default() Config {
	return Config{
		Ingest: IngestConfig{
			StallTimeout:        30 * time.Second,
			ReconnectBackoffMin: time.Second,
			ReconnectBackoffMax: 30 * time.Second,
		},
		Topology: TopologyConfig{
			TickArrayRadius:  3,
			BinArrayRadius:   3,
			BoundaryBuffer:   1,
			RefreshInterval:  5 * time.Second,
			FetchConcurrency: 12,
			OrphanTTL:        60 * time.Second,
		},
		Arb: ArbConfig{
			MinCandidateSpreadBps: 30,
			DebounceWindow:        200 * time.Millisecond,
			DustThresholdLamports: 1_000_000,
			StaleThresholdMs:      30_000,
		},
		RPC: RPCConfig{
			RateLimitRps:   10,
			RateLimitBurst: 20,
			Timeout:        5 * time.Second,
		},
		Log: LogConfig{Level: "info", JSON: true},
	}
}

// Load reads configuration from path (if non-empty), environment variables
// prefixed ENGINE_, and falls back to Default() for anything unset.
func Load(path string) (Config, error) {
	v := viper.New()
	cfg := Default()

	v.SetEnvPrefix("engine")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
