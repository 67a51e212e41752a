package order

import (
	"skycourier/internal/pkg/errs"
)

// Priority classifies the urgency of a delivery order.
type Priority int

const (
	// PriorityUnknown represents an invalid or undefined priority.
	PriorityUnknown Priority = iota

	// PriorityNormal is the default priority for regular parcels.
	PriorityNormal

	// PriorityUrgent marks time-critical shipments.
	PriorityUrgent

	// PriorityMedical marks medical payloads such as blood or vaccines.
	PriorityMedical
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityUnknown: "UNKNOWN",
		PriorityNormal:  "NORMAL",
		PriorityUrgent:  "URGENT",
		PriorityMedical: "MEDICAL",
	}
}

// PriorityFromString parses a priority name as used on the wire.
func PriorityFromString(s string) (Priority, error) {
	for p, name := range getPriorityStrings() {
		if name == s && p != PriorityUnknown {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidError("priority")
}

func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks the Priority is one of the defined values.
func (p Priority) Validate() error {
	if p <= PriorityUnknown || p > PriorityMedical {
		return errs.NewValueIsInvalidError("priority")
	}
	return nil
}
