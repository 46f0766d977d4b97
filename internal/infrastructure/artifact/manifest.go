package artifact

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Default artifact file names.
const (
	ManifestFile       = "manifest.yaml"
	FeatureColumnsFile = "feature_columns.json"
	ScalerFile         = "scaler.json"
	ModelFile          = "model.json"
)

// Manifest is the optional manifest.yaml next to the artifacts.
type Manifest struct {
	ModelVersion string        `yaml:"model_version"`
	Threshold    float64       `yaml:"threshold"`
	Files        ManifestFiles `yaml:"files"`
	TrainedAt    string        `yaml:"trained_at,omitempty"`
	Notes        string        `yaml:"notes,omitempty"`
}

// ManifestFiles overrides the artifact file names.
type ManifestFiles struct {
	FeatureColumns string `yaml:"feature_columns"`
	Scaler         string `yaml:"scaler"`
	Model          string `yaml:"model"`
}

func defaultManifest() Manifest {
	return Manifest{
		Files: ManifestFiles{
			FeatureColumns: FeatureColumnsFile,
			Scaler:         ScalerFile,
			Model:          ModelFile,
		},
	}
}

// ReadManifest loads the manifest from src, falling back to defaults when
// the source has none.
func ReadManifest(ctx context.Context, src Source) (Manifest, error) {
	m := defaultManifest()

	data, err := src.ReadFile(ctx, ManifestFile)
	if errors.Is(err, ErrNotFound) {
		return m, nil
	}
	if err != nil {
		return Manifest{}, err
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("artifact: parse %s: %w", ManifestFile, err)
	}
	if m.Threshold < 0 || m.Threshold >= 1 {
		return Manifest{}, fmt.Errorf("artifact: manifest threshold %v outside [0,1)", m.Threshold)
	}

	d := defaultManifest().Files
	if m.Files.FeatureColumns == "" {
		m.Files.FeatureColumns = d.FeatureColumns
	}
	if m.Files.Scaler == "" {
		m.Files.Scaler = d.Scaler
	}
	if m.Files.Model == "" {
		m.Files.Model = d.Model
	}
	return m, nil
}
