package building

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project is a building model plus calculation defaults as stored in a
// project file. The defaults are plain numbers so architects can edit
// them by hand; the CLI converts them to a calc.Config.
type Project struct {
	Building Building     `yaml:"building" json:"building"`
	Defaults CalcDefaults `yaml:"calculation" json:"calculation"`
}

// CalcDefaults are the caller-editable calculation settings.
type CalcDefaults struct {
	TimeStepMinutes    float64 `yaml:"time_step_minutes" json:"time_step_minutes"`
	RequiredMinutes    float64 `yaml:"required_minutes" json:"required_minutes"`
	GridDensity        float64 `yaml:"grid_density" json:"grid_density"` // points per m²
	MinKEO             float64 `yaml:"min_keo" json:"min_keo"`           // percent
	WorkingPlaneHeight float64 `yaml:"working_plane_height" json:"working_plane_height"`
	LoggiaTransmission float64 `yaml:"loggia_transmission" json:"loggia_transmission"`
	Dates              []string `yaml:"dates,omitempty" json:"dates,omitempty"` // evaluation dates, YYYY-MM-DD
}

// Load reads a project from a YAML file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing project YAML: %w", err)
	}

	return &p, nil
}

// LoadProject loads a project from a project directory.
// It looks for building.yaml in the given directory.
func LoadProject(projectDir string) (*Project, error) {
	return Load(filepath.Join(projectDir, "building.yaml"))
}
