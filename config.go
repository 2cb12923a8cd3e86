package shade

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/shade/internal/gpu"
)

// BackendKind selects the GPU API.
type BackendKind string

const (
	// BackendAuto probes the fallback chain: vulkan, then noop.
	BackendAuto BackendKind = "auto"
	// BackendVulkan requests Vulkan explicitly; creation failure is
	// fatal to New.
	BackendVulkan BackendKind = "vulkan"
	// BackendNoop requests the headless noop device. No real GPU work
	// is executed; frames still flow. Used for tests and CI.
	BackendNoop BackendKind = "noop"
)

// PowerPreference biases GPU adapter selection.
type PowerPreference string

const (
	// PowerDefault takes the first adapter found.
	PowerDefault PowerPreference = ""
	// PowerHighPerformance prefers discrete adapters.
	PowerHighPerformance PowerPreference = "high-performance"
	// PowerLowPower prefers integrated adapters.
	PowerLowPower PowerPreference = "low-power"
)

// SharingMode controls whether windows share one backend.
type SharingMode string

const (
	// SharingAuto shares a backend whenever the selected kind allows
	// it (all currently supported kinds do).
	SharingAuto SharingMode = "auto"
	// SharingShared forces one backend for all windows, created at New.
	SharingShared SharingMode = "shared"
	// SharingPrivate gives each window its own backend, created
	// lazily at registration.
	SharingPrivate SharingMode = "private"
)

// Config configures a Graphics instance. Set once at construction;
// never mutated afterwards.
type Config struct {
	// Backend selects the GPU API. Default: auto.
	Backend BackendKind `yaml:"backend"`

	// Power biases adapter selection. Default: first adapter.
	Power PowerPreference `yaml:"power"`

	// Sharing controls backend sharing across windows. Default: auto.
	Sharing SharingMode `yaml:"sharing"`

	// TickRate is the scheduling frequency in Hz. Default: 60.
	TickRate int `yaml:"tick_rate"`

	// FPSWindow is the frame-rate estimator's sample count. Default: 30.
	FPSWindow int `yaml:"fps_window"`
}

// DefaultConfig returns the standard configuration: auto backend
// detection, shared backend, 60 Hz ticks, 30-sample rate estimator.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendAuto,
		Sharing:   SharingAuto,
		TickRate:  60,
		FPSWindow: 30,
	}
}

// LoadConfig reads a YAML config file. Missing fields keep their
// defaults; unknown fields are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enum values and ranges.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendVulkan, BackendNoop, "":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Power {
	case PowerDefault, PowerHighPerformance, PowerLowPower:
	default:
		return fmt.Errorf("unknown power preference %q", c.Power)
	}
	switch c.Sharing {
	case SharingAuto, SharingShared, SharingPrivate, "":
	default:
		return fmt.Errorf("unknown sharing mode %q", c.Sharing)
	}
	if c.TickRate < 0 {
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.FPSWindow < 0 {
		return fmt.Errorf("fps window must be positive, got %d", c.FPSWindow)
	}
	return nil
}

// withDefaults fills zero values with their defaults.
func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	if c.Sharing == "" {
		c.Sharing = SharingAuto
	}
	if c.TickRate == 0 {
		c.TickRate = 60
	}
	if c.FPSWindow == 0 {
		c.FPSWindow = 30
	}
	return c
}

// shareBackend reports whether one backend serves all windows.
func (c Config) shareBackend() bool {
	switch c.Sharing {
	case SharingShared:
		return true
	case SharingPrivate:
		return false
	default:
		return c.gpuKind().Shareable()
	}
}

func (c Config) gpuKind() gpu.BackendKind {
	switch c.Backend {
	case BackendVulkan:
		return gpu.KindVulkan
	case BackendNoop:
		return gpu.KindNoop
	default:
		return gpu.KindAuto
	}
}

func (c Config) gpuPower() gpu.PowerPreference {
	switch c.Power {
	case PowerHighPerformance:
		return gpu.PowerHigh
	case PowerLowPower:
		return gpu.PowerLow
	default:
		return gpu.PowerDefault
	}
}

// backendOptions translates the config for internal/gpu.
func (c Config) backendOptions() gpu.BackendOptions {
	return gpu.BackendOptions{
		Kind:  c.gpuKind(),
		Power: c.gpuPower(),
	}
}
