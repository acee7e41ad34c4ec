package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"pulse.transitlab.org/internal/appconf"
)

// parseConfig builds the configuration from defaults, then the -config file,
// then any flags given explicitly on the command line.
func parseConfig(args []string, output io.Writer) (appconf.Config, error) {
	cfg := appconf.Default()
	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configPath  string
		apiKeysFlag string
		envFlag     string
		port        int
		rateLimit   int
		logLevel    string
		seed        uint64
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML config file")
	fs.IntVar(&port, "port", cfg.Port, "API server port")
	fs.StringVar(&envFlag, "env", cfg.EnvName, "Environment (development|test|production)")
	fs.StringVar(&apiKeysFlag, "api-keys", strings.Join(cfg.ApiKeys, ","), "Comma Separated API Keys (test, etc)")
	fs.IntVar(&rateLimit, "rate-limit", cfg.RateLimit, "Requests per second allowed for each API key")
	fs.StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.Uint64Var(&seed, "seed", cfg.Simulation.Seed, "Seed for the simulation's random source")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if configPath != "" {
		if err := appconf.LoadFile(configPath, &cfg); err != nil {
			return cfg, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = port
		case "env":
			cfg.EnvName = envFlag
		case "api-keys":
			cfg.ApiKeys = splitKeys(apiKeysFlag)
		case "rate-limit":
			cfg.RateLimit = rateLimit
		case "log-level":
			cfg.LogLevel = logLevel
		case "seed":
			cfg.Simulation.Seed = seed
		}
	})
	if cfg.Env, err = appconf.ParseEnvironment(cfg.EnvName); err != nil {
		return cfg, err
	}
	if err := appconf.Validate(&cfg); err != nil {
		return cfg, err
	}
	if len(cfg.ApiKeys) == 0 {
		return cfg, fmt.Errorf("at least one API key is required")
	}
	return cfg, nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
