package job

import "skycourier/internal/pkg/errs"

// Status is the lifecycle status of a delivery job.
type Status int

const (
	Unknown Status = iota
	Pending
	Active
	Completed
	Failed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Pending:   "PENDING",
		Active:    "ACTIVE",
		Completed: "COMPLETED",
		Failed:    "FAILED",
	}
}

// StatusFromString parses the wire representation of a job status.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidError("status")
}

func (s Status) String() string {
	if name, ok := getStatusStrings()[s]; ok {
		return name
	}
	return getStatusStrings()[Unknown]
}

func (s Status) Validate() error {
	if s <= Unknown || s > Failed {
		return errs.NewValueIsInvalidError("status")
	}
	return nil
}

// IsTerminal reports whether the job can no longer change.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed
}
