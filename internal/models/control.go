package models

import (
	"fmt"
)

// ControlStatus is a per-page override of commenting eligibility.
// The numeric value is the storage encoding.
type ControlStatus int

const (
	ControlEnabled  ControlStatus = 0
	ControlReadOnly ControlStatus = 1
	ControlDisabled ControlStatus = 2
)

var controlStatusKeys = map[ControlStatus]string{
	ControlEnabled:  "enabled",
	ControlReadOnly: "read-only",
	ControlDisabled: "disabled",
}

// Key returns the display key of the status
func (s ControlStatus) Key() string {
	if key, ok := controlStatusKeys[s]; ok {
		return key
	}
	return "unknown"
}

// String implements fmt.Stringer
func (s ControlStatus) String() string {
	return s.Key()
}

// AllowsSubmission reports whether new comments may be posted
func (s ControlStatus) AllowsSubmission() bool {
	return s == ControlEnabled
}

// ThreadVisible reports whether the comment thread is shown at all.
// Read-only pages still show existing comments.
func (s ControlStatus) ThreadVisible() bool {
	return s != ControlDisabled
}

// ParseControlStatus converts a stored value into a ControlStatus
func ParseControlStatus(v int) (ControlStatus, error) {
	s := ControlStatus(v)
	if _, ok := controlStatusKeys[s]; !ok {
		return ControlEnabled, fmt.Errorf("invalid control status value: %d", v)
	}
	return s, nil
}

// ControlStatusFromKey converts a display key into a ControlStatus
func ControlStatusFromKey(key string) (ControlStatus, error) {
	for s, k := range controlStatusKeys {
		if k == key {
			return s, nil
		}
	}
	return ControlEnabled, fmt.Errorf("invalid control status %q, must be one of: enabled, read-only, disabled", key)
}

// ControlOverride is a stored non-default control status
type ControlOverride struct {
	PageID int64         `json:"page_id" db:"page_id"`
	Status ControlStatus `json:"-" db:"restriction"`
	Key    string        `json:"status" db:"-"`
}
