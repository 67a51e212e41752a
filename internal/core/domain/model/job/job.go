package job

import (
	"errors"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"
)

// ErrJobIsNotConstructed is returned when a Job instance was not created
// through NewJob or RestoreJob.
var ErrJobIsNotConstructed = errors.New("Job must be created via NewJob or RestoreJob")

// Job is the record of a single assignment of an order to a drone. It is
// created by dispatch (automatic or manual) in Pending status, becomes Active
// once the mission intent is handed to the mission platform, and ends
// Completed or Failed with the order it serves.
type Job struct {
	id              kernel.UUID
	orderID         kernel.UUID
	assignedDroneID string
	missionIntentID string
	etaSeconds      *int
	status          Status
	createdAt       time.Time
	updatedAt       time.Time

	isConstructed bool
}

// NewJob creates a Pending job binding an order to a drone.
func NewJob(id kernel.UUID, orderID kernel.UUID, assignedDroneID string) (*Job, error) {
	j := &Job{isConstructed: true}

	err := errors.Join(
		j.setID(id),
		j.setOrderID(orderID),
		j.setAssignedDroneID(assignedDroneID),
	)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	j.status = Pending
	j.createdAt = now
	j.updatedAt = now
	return j, nil
}

// RestoreJob reconstructs a job from persisted state.
func RestoreJob(
	id kernel.UUID,
	orderID kernel.UUID,
	assignedDroneID string,
	missionIntentID string,
	etaSeconds *int,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) (*Job, error) {
	j := &Job{isConstructed: true}

	err := errors.Join(
		j.setID(id),
		j.setOrderID(orderID),
		j.setAssignedDroneID(assignedDroneID),
		status.Validate(),
	)
	if err != nil {
		return nil, err
	}

	j.missionIntentID = missionIntentID
	j.etaSeconds = etaSeconds
	j.status = status
	j.createdAt = createdAt
	j.updatedAt = updatedAt
	return j, nil
}

func (j *Job) Validate() error {
	if !j.isConstructed {
		return ErrJobIsNotConstructed
	}
	return nil
}

func (j *Job) IsEqual(other *Job) bool {
	return j.id.IsEqual(other.id)
}

func (j *Job) ID() kernel.UUID          { return j.id }
func (j *Job) OrderID() kernel.UUID     { return j.orderID }
func (j *Job) AssignedDroneID() string  { return j.assignedDroneID }
func (j *Job) MissionIntentID() string  { return j.missionIntentID }
func (j *Job) EtaSeconds() *int         { return j.etaSeconds }
func (j *Job) Status() Status           { return j.status }
func (j *Job) CreatedAt() time.Time     { return j.createdAt }
func (j *Job) UpdatedAt() time.Time     { return j.updatedAt }

// AttachMissionIntent activates the job once the mission platform has
// accepted the intent.
func (j *Job) AttachMissionIntent(missionIntentID string, etaSeconds *int) error {
	if missionIntentID == "" {
		return errs.NewValueIsRequiredError("missionIntentId")
	}
	if j.status != Pending {
		return errs.NewPreconditionFailedError(
			"mission intent can only be attached to a pending job")
	}

	j.missionIntentID = missionIntentID
	j.etaSeconds = etaSeconds
	j.status = Active
	j.updatedAt = time.Now().UTC()
	return nil
}

// Complete finishes the job successfully.
func (j *Job) Complete() error {
	return j.finish(Completed)
}

// Fail finishes the job unsuccessfully. Canceled and aborted orders also
// fail their jobs.
func (j *Job) Fail() error {
	return j.finish(Failed)
}

func (j *Job) finish(target Status) error {
	if j.status.IsTerminal() {
		return errs.NewPreconditionFailedError("job is already finished")
	}

	j.status = target
	j.updatedAt = time.Now().UTC()
	return nil
}

func (j *Job) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	j.id = id
	return nil
}

func (j *Job) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	j.orderID = orderID
	return nil
}

func (j *Job) setAssignedDroneID(assignedDroneID string) error {
	if assignedDroneID == "" {
		return errs.NewValueIsRequiredError("assignedDroneId")
	}
	j.assignedDroneID = assignedDroneID
	return nil
}
