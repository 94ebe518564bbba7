// Package config holds daemon settings loaded from an optional YAML file.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sweeney/button-panel/internal/console"
	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
)

// DefaultLockPath is the single-instance lock file.
const DefaultLockPath = "/run/button-panel.lock"

// Config is the full daemon configuration.
type Config struct {
	Chip     string        `yaml:"chip"`
	Pins     []int         `yaml:"pins"`
	Serial   string        `yaml:"serial"`
	Baud     int           `yaml:"baud"`
	Pause    time.Duration `yaml:"pause"`
	Poll     time.Duration `yaml:"poll"`
	Broker   string        `yaml:"broker"`
	HTTPAddr string        `yaml:"http"`
	LockPath string        `yaml:"lock"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chip:     gpio.DefaultChip,
		Pins:     append([]int(nil), gpio.DefaultPins...),
		Serial:   console.DefaultDevice,
		Baud:     console.DefaultBaud,
		Pause:    time.Second,
		Poll:     10 * time.Millisecond,
		HTTPAddr: ":8080",
		LockPath: DefaultLockPath,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Chip == "" {
		return errors.New("gpio chip must be set")
	}
	if len(c.Pins) != logic.NumButtons {
		return fmt.Errorf("need exactly %d pins, got %d", logic.NumButtons, len(c.Pins))
	}
	seen := make(map[int]bool, len(c.Pins))
	for i, p := range c.Pins {
		if p < 0 {
			return fmt.Errorf("pin for button %d is negative: %d", i+1, p)
		}
		if seen[p] {
			return fmt.Errorf("pin %d assigned to more than one button", p)
		}
		seen[p] = true
	}
	if c.Serial == "" {
		return errors.New("serial device must be set (use \"-\" for stdout)")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Baud)
	}
	if c.Pause <= 0 {
		return fmt.Errorf("pause must be positive, got %v", c.Pause)
	}
	if c.Poll < 0 {
		return fmt.Errorf("poll must not be negative, got %v", c.Poll)
	}
	return nil
}

// ParsePins parses a comma-separated pin list such as "5,6,13,19".
func ParsePins(s string) ([]int, error) {
	var pins []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("pin %q: %w", f, err)
		}
		pins = append(pins, n)
	}
	return pins, nil
}

// FormatPins is the inverse of ParsePins.
func FormatPins(pins []int) string {
	parts := make([]string, len(pins))
	for i, p := range pins {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
