// Package catalog supplies the grant catalog: an embedded seed list plus an
// optional remote listing fetcher. Catalog entries are read-only reference
// data for the matcher.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/alexmejias/repo-radar/internal/models"
)

//go:embed config/grants.yaml
var seedYAML embed.FS

type seedFile struct {
	Grants []models.Grant `yaml:"grants"`
}

// LoadSeed returns the embedded seed catalog, normalized.
func LoadSeed() ([]models.Grant, error) {
	data, err := seedYAML.ReadFile("config/grants.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded grant seed: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse grant seed: %w", err)
	}

	grants := make([]models.Grant, 0, len(file.Grants))
	for _, g := range file.Grants {
		NormalizeGrant(&g)
		grants = append(grants, g)
	}
	return grants, nil
}
