package commands

import (
	"errors"

	"skycourier/internal/pkg/errs"
	"skycourier/internal/pkg/guard"
)

var ErrRunDispatchCommandIsNotConstructed = errors.New(
	"RunDispatchCommand must be created via NewRunDispatchCommand constructor",
)

const (
	minAssignmentsPerRun = 1
	maxAssignmentsPerRun = 100
)

// RunDispatchCommand requests one automatic dispatch pass over all
// dispatchable orders. A nil maxAssignments means no cap beyond the pool.
type RunDispatchCommand struct { //nolint:recvcheck //using for validation
	maxAssignments *int

	guard guard.ConstructorGuard
}

// NewRunDispatchCommand creates a dispatch run command. maxAssignments, when
// present, must be between 1 and 100.
func NewRunDispatchCommand(maxAssignments *int) (RunDispatchCommand, error) {
	cmd := RunDispatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setMaxAssignments(maxAssignments); err != nil {
		return RunDispatchCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RunDispatchCommand) Validate() error {
	return c.guard.Validate(ErrRunDispatchCommandIsNotConstructed)
}

func (c RunDispatchCommand) MaxAssignments() *int {
	return c.maxAssignments
}

func (c *RunDispatchCommand) setMaxAssignments(maxAssignments *int) error {
	if maxAssignments != nil &&
		(*maxAssignments < minAssignmentsPerRun || *maxAssignments > maxAssignmentsPerRun) {
		return errs.NewValueIsOutOfRangeError(
			"maxAssignments", *maxAssignments, minAssignmentsPerRun, maxAssignmentsPerRun)
	}
	c.maxAssignments = maxAssignments
	return nil
}
