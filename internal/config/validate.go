package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Metta-AI/mettagrid/internal/types"
)

// ValidationError aggregates every construction-time problem found in a
// GameConfig, mirroring the teacher's contract.Registry.Validate() style of
// collecting every issue in one pass rather than failing on the first.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %d issue(s): %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// Validate checks the construction-time invariants from spec.md §7 item 1:
// observation window size vs. the packed-coordinate range, duplicate
// type-id/type-name assignments, and a non-negative num_agents. num_agents
// is not checked against any upper bound.
func (c GameConfig) Validate() error {
	ve := &ValidationError{}

	if c.ObsWidth < 1 || c.ObsWidth > types.MaxPackedDimension {
		ve.add("obs_width %d out of range [1,%d]", c.ObsWidth, types.MaxPackedDimension)
	}
	if c.ObsHeight < 1 || c.ObsHeight > types.MaxPackedDimension {
		ve.add("obs_height %d out of range [1,%d]", c.ObsHeight, types.MaxPackedDimension)
	}
	if c.NumAgents < 0 {
		ve.add("num_agents must be >= 0, got %d", c.NumAgents)
	}
	if c.NumObservationTokens < 0 {
		ve.add("num_observation_tokens must be >= 0, got %d", c.NumObservationTokens)
	}

	typeIDs := make(map[int]string)
	typeNames := make(map[string]int)
	for _, obj := range c.Objects {
		if existing, ok := typeIDs[obj.TypeID]; ok && existing != obj.TypeName {
			ve.add("type_id %d reused by both %q and %q", obj.TypeID, existing, obj.TypeName)
		} else {
			typeIDs[obj.TypeID] = obj.TypeName
		}
		if existing, ok := typeNames[obj.TypeName]; ok && existing != obj.TypeID {
			ve.add("type_name %q reused by both type_id %d and %d", obj.TypeName, existing, obj.TypeID)
		} else {
			typeNames[obj.TypeName] = obj.TypeID
		}
	}

	eventNames := make(map[string]bool)
	for _, ev := range c.Events {
		eventNames[ev.Name] = true
	}
	for _, ev := range c.Events {
		if ev.FallbackID != "" && !eventNames[ev.FallbackID] {
			ve.add("event %q references unknown fallback %q", ev.Name, ev.FallbackID)
		}
	}

	if len(ve.Issues) == 0 {
		return nil
	}
	return ve
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
