package config

import (
	"fmt"
	"strconv"
)

// Validate checks configuration correctness. It performs declarative
// validation only and does not mutate the configuration. Anything it
// rejects is a startup failure, never a runtime one.
func Validate(cfg *Config) error {
	if cfg.Device == "" {
		return fmt.Errorf("config: device is required")
	}

	switch cfg.Backend {
	case BackendKernel:
	case BackendSDL:
		if cfg.MappingDB == "" {
			return fmt.Errorf("config: mapping_db is required for the sdl backend")
		}
		if _, err := cfg.DeviceIndex(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: unknown backend %q", cfg.Backend)
	}

	if cfg.Deadzone < 0 || cfg.Deadzone >= 1 {
		return fmt.Errorf("config: deadzone must be in [0, 1), got %v", cfg.Deadzone)
	}
	if cfg.AutorepeatRate < 0 {
		return fmt.Errorf("config: autorepeat_rate must be >= 0, got %v", cfg.AutorepeatRate)
	}
	if cfg.CoalesceIntervalMs < 0 {
		return fmt.Errorf("config: coalesce_interval_ms must be >= 0, got %d", cfg.CoalesceIntervalMs)
	}
	if cfg.DiagnosticsIntervalMs <= 0 {
		return fmt.Errorf("config: diagnostics_interval_ms must be > 0, got %d", cfg.DiagnosticsIntervalMs)
	}
	if cfg.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr is required")
	}

	for k := range cfg.AxisScale {
		if n, err := strconv.Atoi(k); err != nil || n < 0 {
			return fmt.Errorf("config: axis_scale key %q is not a valid axis index", k)
		}
	}
	for k := range cfg.AxisInvert {
		if n, err := strconv.Atoi(k); err != nil || n < 0 {
			return fmt.Errorf("config: axis_invert key %q is not a valid axis index", k)
		}
	}
	return nil
}
