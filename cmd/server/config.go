package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type serverConfig struct {
	Addr       string
	DataDir    string
	TuningPath string

	LogLevel  string
	LogFormat string

	IndexBackend string
	TraceEnabled bool
	PlansEnabled bool
	PprofEnabled bool
}

// loadConfig reads wanderer.yaml from dir when present. WANDERER_* variables
// override both defaults and the file, e.g. WANDERER_INDEX_BACKEND=none.
func loadConfig(v *viper.Viper, dir string) (serverConfig, error) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("dataDir", "./data")
	v.SetDefault("tuningPath", "./configs/tuning.yaml")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "json")
	v.SetDefault("index.backend", "sqlite")
	v.SetDefault("trace.enabled", true)
	v.SetDefault("plans.enabled", true)
	v.SetDefault("pprof.enabled", false)

	v.SetConfigName("wanderer")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("WANDERER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return serverConfig{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := serverConfig{
		Addr:         v.GetString("addr"),
		DataDir:      v.GetString("dataDir"),
		TuningPath:   v.GetString("tuningPath"),
		LogLevel:     v.GetString("logLevel"),
		LogFormat:    v.GetString("logFormat"),
		IndexBackend: strings.ToLower(strings.TrimSpace(v.GetString("index.backend"))),
		TraceEnabled: v.GetBool("trace.enabled"),
		PlansEnabled: v.GetBool("plans.enabled"),
		PprofEnabled: v.GetBool("pprof.enabled"),
	}
	if cfg.Addr == "" {
		return cfg, errors.New("addr must not be empty")
	}
	return cfg, nil
}
