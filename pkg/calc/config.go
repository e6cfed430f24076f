package calc

import (
	"fmt"
	"time"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/keo"
	"github.com/insolight/insolight/pkg/loggia"
	"github.com/insolight/insolight/pkg/shadow"
	"github.com/insolight/insolight/pkg/validation"
)

// ProgressFunc receives coarse progress updates (per window or per
// room). done counts completed units out of total.
type ProgressFunc func(stage string, done, total int)

// Config carries the caller-supplied calculation settings. Regulatory
// thresholds are configuration, not constants: the required duration
// and calendar dates depend on the latitude zone of the applicable
// code.
type Config struct {
	TimeStep           time.Duration `json:"time_step"`
	RequiredDuration   time.Duration `json:"required_duration"`
	GridDensity        float64       `json:"grid_density"` // points per m²
	MinKEO             float64       `json:"min_keo"`      // percent
	WorkingPlaneHeight float64       `json:"working_plane_height"`
	// LoggiaTransmission must be in (0, 1]; zero selects the loggia
	// package default.
	LoggiaTransmission float64 `json:"loggia_transmission"`
	ShadowSearchRadius float64 `json:"shadow_search_radius"`

	// Progress is invoked between windows; nil disables reporting.
	Progress ProgressFunc `json:"-"`
}

// DefaultConfig returns the settings used when a project file supplies
// none.
func DefaultConfig() Config {
	return Config{
		TimeStep:           time.Minute,
		RequiredDuration:   90 * time.Minute,
		GridDensity:        1.0,
		MinKEO:             0.5,
		WorkingPlaneHeight: keo.DefaultWorkingPlane,
		LoggiaTransmission: loggia.DefaultTransmission,
		ShadowSearchRadius: shadow.DefaultSearchRadius,
	}
}

// FromDefaults converts the plain numbers of a project file into a
// Config, falling back to defaults for unset values.
func FromDefaults(d building.CalcDefaults) Config {
	cfg := DefaultConfig()
	if d.TimeStepMinutes > 0 {
		cfg.TimeStep = time.Duration(d.TimeStepMinutes * float64(time.Minute))
	}
	if d.RequiredMinutes > 0 {
		cfg.RequiredDuration = time.Duration(d.RequiredMinutes * float64(time.Minute))
	}
	if d.GridDensity > 0 {
		cfg.GridDensity = d.GridDensity
	}
	if d.MinKEO > 0 {
		cfg.MinKEO = d.MinKEO
	}
	if d.WorkingPlaneHeight > 0 {
		cfg.WorkingPlaneHeight = d.WorkingPlaneHeight
	}
	if d.LoggiaTransmission > 0 {
		cfg.LoggiaTransmission = d.LoggiaTransmission
	}
	return cfg
}

// Validate rejects configurations that invalidate an entire run's
// semantics. Configuration errors are fatal and surfaced before any
// calculation starts, unlike entity-scoped findings which are recovered
// per window or room.
func (c Config) Validate() *validation.Report {
	r := validation.NewReport()

	if c.TimeStep <= 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelConfig,
			Message:     "time step must be positive",
			EntityPath:  "config.time_step",
			ActualValue: c.TimeStep.String(),
			Expected:    "> 0",
		})
	}
	if c.RequiredDuration <= 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelConfig,
			Message:     "required insolation duration must be positive",
			EntityPath:  "config.required_duration",
			ActualValue: c.RequiredDuration.String(),
			Expected:    "> 0",
		})
	}
	if c.GridDensity <= 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelConfig,
			Message:     "grid density must be positive",
			EntityPath:  "config.grid_density",
			ActualValue: c.GridDensity,
			Expected:    "> 0",
		})
	}
	if c.MinKEO < 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelConfig,
			Message:     "minimum KEO cannot be negative",
			EntityPath:  "config.min_keo",
			ActualValue: c.MinKEO,
			Expected:    ">= 0",
		})
	}
	if c.LoggiaTransmission < 0 || c.LoggiaTransmission > 1 {
		r.AddError(validation.Result{
			Level:       validation.LevelConfig,
			Message:     fmt.Sprintf("loggia transmission %.3f out of range", c.LoggiaTransmission),
			EntityPath:  "config.loggia_transmission",
			ActualValue: c.LoggiaTransmission,
			Expected:    "(0, 1], or 0 for the default",
		})
	}

	return r
}

func (c Config) progress(stage string, done, total int) {
	if c.Progress != nil {
		c.Progress(stage, done, total)
	}
}
