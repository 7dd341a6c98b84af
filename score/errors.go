package score

import (
	"errors"
	"fmt"
)

// ErrDataLoad is the sentinel wrapped by every DataLoadError
var ErrDataLoad = errors.New("data load failed")

// DataLoadError reports an empty or unparseable score source
// Fatal to the load call; the previously loaded dataset stays active
type DataLoadError struct {
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data load failed: %s: %v", e.Reason, e.Err)
	}
	return "data load failed: " + e.Reason
}

// Unwrap exposes both the sentinel and the cause
func (e *DataLoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDataLoad, e.Err}
	}
	return []error{ErrDataLoad}
}

// MissingMapSequenceError reports a matchup without a map rotation
// Non-fatal: maps degrade to Unknown
type MissingMapSequenceError struct {
	MatchupID string
}

func (e *MissingMapSequenceError) Error() string {
	return fmt.Sprintf("no map sequence for matchup %q, maps resolve to Unknown", e.MatchupID)
}
