package engine

import (
	"os"

	"github.com/Metta-AI/mettagrid/internal/enginelog"
)

// EngineOptions toggles the engine's diagnostic behaviors, one per env var
// (SPEC_FULL.md §2.1/§5): DEBUG_HANDLERS, METTAGRID_PROFILING,
// METTAGRID_OBS_VALIDATION, METTAGRID_OBS_USE_OPTIMIZED.
type EngineOptions struct {
	// DebugHandlers lowers the router's minimum severity to Debug so
	// handler.Deps.Logger's per-TryApply trace events reach a sink.
	DebugHandlers bool
	// Profiling publishes a CategoryProfiling event per tick pipeline
	// phase with its wall-clock duration.
	Profiling bool
	// ObsValidation runs both observation encoders every tick via
	// observation.ShadowEncoder and logs any disagreement.
	ObsValidation bool
	// ObsUseOptimized selects OptimizedEncoder (or ShadowEncoder's
	// optimized buffer) over ReferenceEncoder. Defaults true.
	ObsUseOptimized bool
}

// DefaultOptions matches the engine's behavior with no env vars set:
// the optimized encoder, no validation, no profiling, default severity.
func DefaultOptions() EngineOptions {
	return EngineOptions{ObsUseOptimized: true}
}

// OptionsFromEnv reads the four diagnostic flags from the process
// environment, the same names the teacher's tooling scripts set for a
// debug run.
func OptionsFromEnv() EngineOptions {
	return EngineOptions{
		DebugHandlers:   envSet("DEBUG_HANDLERS"),
		Profiling:       envSet("METTAGRID_PROFILING"),
		ObsValidation:   envSet("METTAGRID_OBS_VALIDATION"),
		ObsUseOptimized: !envDisabled("METTAGRID_OBS_USE_OPTIMIZED"),
	}
}

func envSet(name string) bool {
	v, ok := os.LookupEnv(name)
	return ok && v != "" && v != "0"
}

func envDisabled(name string) bool {
	v, ok := os.LookupEnv(name)
	return ok && (v == "0" || v == "false")
}

// RouterConfig builds the enginelog.Config matching opts.DebugHandlers,
// for callers assembling the Router passed into New.
func (opts EngineOptions) RouterConfig() enginelog.Config {
	cfg := enginelog.DefaultConfig()
	if opts.DebugHandlers {
		cfg.MinimumSeverity = enginelog.SeverityDebug
	}
	return cfg
}
