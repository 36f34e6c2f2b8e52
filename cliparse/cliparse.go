package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	// Pairwise engine
	ReprocessEvery   int
	PairCandidates   int
	ExplorationGamma float64
	ReprocessOnStart bool

	// Per-client vote rate limit (requests/second and burst)
	RateLimit float64
	RateBurst int
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickly-rank", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	fs.IntVar(&cfg.ReprocessEvery, "reprocess-every", 10, "Rebuild pairwise stats every N comparisons (0 disables)")
	fs.IntVar(&cfg.PairCandidates, "pair-candidates", 10, "Top pairs sampled when picking the next comparison")
	fs.Float64Var(&cfg.ExplorationGamma, "gamma", 0.1, "Weight of annotator reliability in pair selection (0-1)")
	fs.BoolVar(&cfg.ReprocessOnStart, "reprocess-on-start", false, "Rebuild all pairwise stats at startup")

	fs.Float64Var(&cfg.RateLimit, "rate-limit", 5, "Votes per second per client")
	fs.IntVar(&cfg.RateBurst, "rate-burst", 20, "Vote burst per client")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if err := envInt(set, "reprocess-every", "REPROCESS_EVERY", &cfg.ReprocessEvery); err != nil {
		return Config{}, err
	}
	if err := envInt(set, "pair-candidates", "PAIR_CANDIDATES", &cfg.PairCandidates); err != nil {
		return Config{}, err
	}
	if err := envFloat(set, "gamma", "EXPLORATION_GAMMA", &cfg.ExplorationGamma); err != nil {
		return Config{}, err
	}
	if err := envBool(set, "reprocess-on-start", "REPROCESS_ON_START", &cfg.ReprocessOnStart); err != nil {
		return Config{}, err
	}
	if err := envFloat(set, "rate-limit", "RATE_LIMIT", &cfg.RateLimit); err != nil {
		return Config{}, err
	}
	if err := envInt(set, "rate-burst", "RATE_BURST", &cfg.RateBurst); err != nil {
		return Config{}, err
	}

	if cfg.ReprocessEvery < 0 {
		return Config{}, errors.New("reprocess interval must not be negative")
	}
	if cfg.PairCandidates < 1 {
		return Config{}, errors.New("pair candidates must be at least 1")
	}
	if cfg.ExplorationGamma < 0 || cfg.ExplorationGamma > 1 {
		return Config{}, errors.New("gamma must be between 0 and 1")
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst < 1 {
		return Config{}, errors.New("rate limit and burst must be positive")
	}

	return cfg, nil
}

func envInt(set map[string]bool, flagName, env string, dst *int) error {
	v := os.Getenv(env)
	if set[flagName] || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable", env)
	}
	*dst = n
	return nil
}

func envFloat(set map[string]bool, flagName, env string, dst *float64) error {
	v := os.Getenv(env)
	if set[flagName] || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s env variable", env)
	}
	*dst = f
	return nil
}

func envBool(set map[string]bool, flagName, env string, dst *bool) error {
	v := os.Getenv(env)
	if set[flagName] || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable", env)
	}
	*dst = b
	return nil
}
