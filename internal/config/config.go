// Package config loads and validates the driver configuration. Values come
// from flags, an optional YAML config file and JOYD_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Backend names accepted in configuration.
const (
	BackendKernel = "js"  // blocking-read kernel joystick interface
	BackendSDL    = "sdl" // SDL3 polling abstraction with mapping database
)

// Config is immutable for the lifetime of one driver process.
type Config struct {
	Device                string             `mapstructure:"device"`  // path (js) or index (sdl)
	Backend               string             `mapstructure:"backend"` // "js" or "sdl"
	Deadzone              float64            `mapstructure:"deadzone"`
	AutorepeatRate        float64            `mapstructure:"autorepeat_rate"` // Hz, 0 disables the heartbeat
	CoalesceIntervalMs    int                `mapstructure:"coalesce_interval_ms"`
	StickyButtons         bool               `mapstructure:"sticky_buttons"`
	MappingDB             string             `mapstructure:"mapping_db"` // sdl backend only
	ListenAddr            string             `mapstructure:"listen_addr"`
	DiagnosticsIntervalMs int                `mapstructure:"diagnostics_interval_ms"`
	Tray                  bool               `mapstructure:"tray"`
	AxisScale             map[string]float64 `mapstructure:"axis_scale"`  // axis index -> multiplier, config file only
	AxisInvert            map[string]bool    `mapstructure:"axis_invert"` // axis index -> flip, config file only
}

// Load parses flags and, when --config is given, merges the file on top of
// the defaults. An unreadable or malformed config file is a startup
// failure. The axis_scale and axis_invert maps have no flag or environment
// form; set them in the config file.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("joyd", pflag.ContinueOnError)
	cfgFile := fs.String("config", "", "path to YAML config file")
	fs.String("device", "/dev/input/js0", "device node path (js) or joystick index (sdl)")
	fs.String("backend", BackendKernel, `input backend: "js" or "sdl"`)
	fs.Float64("deadzone", 0.05, "axis deadzone, fraction of full deflection")
	fs.Float64("autorepeat-rate", 0, "heartbeat re-emission rate in Hz, 0 disables")
	fs.Int("coalesce-interval-ms", 1, "minimum spacing between change emissions")
	fs.Bool("sticky-buttons", false, "latch momentary button pulses")
	fs.String("mapping-db", "", "controller mapping database file (sdl backend)")
	fs.String("listen-addr", ":8910", "HTTP/websocket listen address")
	fs.Int("diagnostics-interval-ms", 1000, "diagnostics publish period")
	fs.Bool("tray", false, "show a desktop tray icon")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, flag := range map[string]string{
		"device":                  "device",
		"backend":                 "backend",
		"deadzone":                "deadzone",
		"autorepeat_rate":         "autorepeat-rate",
		"coalesce_interval_ms":    "coalesce-interval-ms",
		"sticky_buttons":          "sticky-buttons",
		"mapping_db":              "mapping-db",
		"listen_addr":             "listen-addr",
		"diagnostics_interval_ms": "diagnostics-interval-ms",
		"tray":                    "tray",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, err
		}
	}
	v.SetDefault("axis_scale", map[string]float64{})
	v.SetDefault("axis_invert", map[string]bool{})
	v.SetEnvPrefix("JOYD")
	v.AutomaticEnv()

	if *cfgFile != "" {
		v.SetConfigFile(*cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", *cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// AutorepeatInterval converts the configured rate into a period; zero when
// the heartbeat is disabled.
func (c *Config) AutorepeatInterval() time.Duration {
	if c.AutorepeatRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.AutorepeatRate)
}

func (c *Config) CoalesceInterval() time.Duration {
	return time.Duration(c.CoalesceIntervalMs) * time.Millisecond
}

func (c *Config) DiagnosticsInterval() time.Duration {
	return time.Duration(c.DiagnosticsIntervalMs) * time.Millisecond
}

// DeviceIndex interprets the device field as a joystick index for the SDL
// backend.
func (c *Config) DeviceIndex() (int, error) {
	n, err := strconv.Atoi(c.Device)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("config: device must be a non-negative joystick index for the sdl backend, got %q", c.Device)
	}
	return n, nil
}

// AxisScaleMap converts the string-keyed config map into axis indices.
// Keys were validated beforehand.
func (c *Config) AxisScaleMap() map[int]float64 {
	out := make(map[int]float64, len(c.AxisScale))
	for k, scale := range c.AxisScale {
		if idx, err := strconv.Atoi(k); err == nil {
			out[idx] = scale
		}
	}
	return out
}

func (c *Config) AxisInvertMap() map[int]bool {
	out := make(map[int]bool, len(c.AxisInvert))
	for k, invert := range c.AxisInvert {
		if idx, err := strconv.Atoi(k); err == nil {
			out[idx] = invert
		}
	}
	return out
}
