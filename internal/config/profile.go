package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreProfile is the store identity printed on receipts and reports.
type StoreProfile struct {
	Name    string   `yaml:"name"`
	Tagline string   `yaml:"tagline"`
	Address string   `yaml:"address"`
	Phone   string   `yaml:"phone"`
	Terms   []string `yaml:"terms"`
}

func DefaultProfile() StoreProfile {
	return StoreProfile{
		Name:    "Counter POS",
		Tagline: "Trophies | Awards | Gifts",
		Terms: []string{
			"Payment is due immediately.",
			"Goods once sold cannot be taken back or exchanged.",
		},
	}
}

// LoadProfile reads a YAML profile; missing keys keep their defaults.
func LoadProfile(path string) (StoreProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return StoreProfile{}, fmt.Errorf("read profile: %w", err)
	}
	profile := DefaultProfile()
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return StoreProfile{}, fmt.Errorf("parse profile: %w", err)
	}
	if profile.Name == "" {
		return StoreProfile{}, fmt.Errorf("parse profile: name is required")
	}
	return profile, nil
}
