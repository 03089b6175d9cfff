// Package progress defines the event structures emitted by the job worker.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage discriminates the two kinds of Event.
type Stage string

// Supported progress stages.
const (
	// StageProgress carries a percentage in [0,100].
	StageProgress Stage = "PROGRESS"
	// StageDone marks job completion; it follows the report of 100.
	StageDone Stage = "DONE"
)

// MaxPercent is the terminal progress value.
const MaxPercent = 100

// Event captures a single step of a job run.
type Event struct {
	// ClientID routes the event to the browser session that started the job.
	ClientID string
	// JobID identifies one run using the 16-byte UUID form.
	JobID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage selects between a progress report and completion.
	Stage Stage
	// Percent is the job progress; always MaxPercent on StageDone.
	Percent int
	// Step counts pause/advance iterations since the job started.
	Step int
	// Dur is the elapsed run time, set on StageDone.
	Dur time.Duration
}

// NewProgress builds a StageProgress event.
func NewProgress(clientID string, jobID [16]byte, ts time.Time, step, percent int) Event {
	return Event{
		ClientID: clientID,
		JobID:    jobID,
		TS:       ts,
		Stage:    StageProgress,
		Percent:  percent,
		Step:     step,
	}
}

// NewDone builds the StageDone event that closes a run.
func NewDone(clientID string, jobID [16]byte, ts time.Time, step int, dur time.Duration) Event {
	return Event{
		ClientID: clientID,
		JobID:    jobID,
		TS:       ts,
		Stage:    StageDone,
		Percent:  MaxPercent,
		Step:     step,
		Dur:      dur,
	}
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.ClientID == "" {
		return errors.New("client id is required")
	}
	if e.JobID == [16]byte{} {
		return errors.New("job id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageProgress:
		if e.Percent < 0 || e.Percent > MaxPercent {
			return fmt.Errorf("percent %d out of range", e.Percent)
		}
	case StageDone:
		if e.Percent != MaxPercent {
			return fmt.Errorf("done event must carry %d percent, got %d", MaxPercent, e.Percent)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// JobUUID converts the binary job ID to uuid.UUID for logging.
func (e Event) JobUUID() uuid.UUID {
	return uuid.UUID(e.JobID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
