package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"franklin-api/internal/core/domain"
)

// LoadSiteConfig reads .franklin.yml from a checkout. A missing file is not
// an error; the defaults publish the repository root.
func LoadSiteConfig(checkout string) (*domain.SiteConfig, error) {
	cfg := &domain.SiteConfig{OutputDir: "."}

	raw, err := os.ReadFile(filepath.Join(checkout, domain.SiteConfigPath))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.SiteConfigPath, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", domain.SiteConfigPath, err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return cfg, nil
}
