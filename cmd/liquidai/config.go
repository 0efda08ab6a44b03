package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Liquid4All/on-prem-stack/internal/cli"
)

// EnvPrefix namespaces the environment overrides, e.g. LIQUID_LOG_LEVEL.
const EnvPrefix = "LIQUID"

// flagKeys maps settings keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"config":       cli.FlagConfig,
	"env_file":     cli.FlagEnvFile,
	"compose_file": cli.FlagComposeFile,
	"api_url":      cli.FlagAPIURL,
	"docker.host":  cli.FlagDockerHost,
	"log.level":    cli.FlagLogLevel,
	"log.format":   cli.FlagLogFormat,
	"no_color":     cli.FlagNoColor,
}

// =============================================================================
// Settings Loading
// =============================================================================

// LoadSettings resolves the CLI settings: changed flags win over LIQUID_*
// environment variables, which win over the defaults.
func LoadSettings(flags *pflag.FlagSet) (*cli.Settings, error) {
	v := viper.New()

	d := cli.DefaultSettings()
	v.SetDefault("config", d.Config)
	v.SetDefault("env_file", d.EnvFile)
	v.SetDefault("compose_file", d.ComposeFile)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("docker.host", d.Docker.Host)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("no_color", d.NoColor)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var settings cli.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &settings, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger writing to w with the configured level and
// format. Unknown levels fall back to warn.
func SetupLogger(cfg cli.LogSettings, w io.Writer) *zap.Logger {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.WarnLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}
