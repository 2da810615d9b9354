package user

import (
	"fmt"
	"strings"
)

// Status is the account state of a user. It is a closed set: the zero value
// is not a valid status and never leaves the process.
type Status int

const (
	StatusActive Status = iota + 1
	StatusInactive
	StatusSuspended
)

// Statuses lists every valid status in declaration order.
func Statuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusSuspended}
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusSuspended:
		return "suspended"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsValid reports whether s is one of the declared statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}

// AllowedValues returns the wire names of every status. The validation
// package uses it to build "must be one of" messages.
func (s Status) AllowedValues() []string {
	values := make([]string, 0, 3)
	for _, st := range Statuses() {
		values = append(values, st.String())
	}
	return values
}

// ParseStatus maps a wire name to its Status. Matching is exact.
func ParseStatus(raw string) (Status, error) {
	for _, st := range Statuses() {
		if st.String() == raw {
			return st, nil
		}
	}
	return 0, fmt.Errorf("status must be one of: %s", strings.Join(Status(0).AllowedValues(), ", "))
}

// MarshalText implements encoding.TextMarshaler; JSON uses it.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; JSON uses it.
func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
