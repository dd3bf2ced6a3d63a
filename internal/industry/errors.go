package industry

import "fmt"

// UnknownItemError is returned when the catalog cannot resolve a
// referenced type id. Fatal: no partial result is produced.
type UnknownItemError struct {
	TypeID int32
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %d", e.TypeID)
}

// NoFacilityError is returned when routing could not pick a facility for
// a node and no default facility exists.
type NoFacilityError struct {
	TypeID int32
}

func (e *NoFacilityError) Error() string {
	return fmt.Sprintf("no facility for type %d", e.TypeID)
}

// CycleError is returned when the recipe graph contains a cycle. The SDE
// should never produce one; seeing this means the catalog is corrupt.
type CycleError struct {
	TypeID int32
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected at type %d", e.TypeID)
}

// NoSolutionError is returned by the smart-buy pricer when no source
// combination can fulfill demand for a type.
type NoSolutionError struct {
	TypeID int32
}

func (e *NoSolutionError) Error() string {
	return fmt.Sprintf("no market solution for type %d", e.TypeID)
}

// ConfigError is returned when the project config fails validation.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
