package models

import "fmt"

// CategoryStatus is the lifecycle state of one category within a scan
type CategoryStatus int

const (
	StatusPending CategoryStatus = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusPermissionDenied
	StatusCancelled
)

// String returns a human-readable status
func (s CategoryStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusRunning:
		return "Running"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusPermissionDenied:
		return "Permission Denied"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transitions can happen
func (s CategoryStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPermissionDenied, StatusCancelled:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler
func (s CategoryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *CategoryStatus) UnmarshalText(text []byte) error {
	for c := StatusPending; c <= StatusCancelled; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown category status %q", text)
}
