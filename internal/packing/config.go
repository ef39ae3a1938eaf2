package packing

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config lists subscription ids excluded from packing previews: staff
// coffee and internal system subscriptions that are never packed on the
// regular line.
type Config struct {
	StaffSubscriptionIDs  []int64 `yaml:"staff_subscription_ids"`
	SystemSubscriptionIDs []int64 `yaml:"system_subscription_ids"`
}

// LoadConfig reads the packing config file. A missing file is not an
// error; it just means nothing is excluded.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Packing config not found, no subscriptions excluded", "path", path)
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ExcludedIDs merges both lists into one lookup set.
func (c *Config) ExcludedIDs() map[int64]struct{} {
	out := make(map[int64]struct{}, len(c.StaffSubscriptionIDs)+len(c.SystemSubscriptionIDs))
	for _, id := range c.StaffSubscriptionIDs {
		out[id] = struct{}{}
	}
	for _, id := range c.SystemSubscriptionIDs {
		out[id] = struct{}{}
	}
	return out
}
