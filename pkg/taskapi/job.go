package taskapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/optima/pkg/poller"
)

// Job types used by the project status aliases.
const (
	TypeOptimize = "optimize"
	TypeAutofit  = "autofit"
)

type jobKey struct {
	resourceID string
	jobType    string
}

// job is one simulated task. Status is derived from the clock unless the job
// was cancelled or failed.
type job struct {
	id         uuid.UUID
	resourceID string
	jobType    string
	startedAt  time.Time
	stoppedAt  time.Time
	final      string
	errorText  string
	resultID   string
}

// StatusDoc is the JSON status document. Absent values encode as null.
type StatusDoc struct {
	JobID      string     `json:"job_id"`
	ResourceID string     `json:"resource_id"`
	JobType    string     `json:"job_type"`
	Status     string     `json:"status"`
	ErrorText  *string    `json:"error_text"`
	StartTime  *time.Time `json:"start_time"`
	StopTime   *time.Time `json:"stop_time"`
	ResultID   *string    `json:"result_id"`
}

func (j *job) status(now time.Time, startDelay, duration time.Duration) string {
	if j.final != "" {
		return j.final
	}
	elapsed := now.Sub(j.startedAt)
	switch {
	case elapsed < startDelay:
		return poller.StatusStarted
	case elapsed < duration:
		return poller.StatusRunning
	default:
		return poller.StatusCompleted
	}
}

// settle freezes a job that has run to completion.
func (j *job) settle(now time.Time, startDelay, duration time.Duration) {
	if j.final == "" && j.status(now, startDelay, duration) == poller.StatusCompleted {
		j.final = poller.StatusCompleted
		j.stoppedAt = j.startedAt.Add(duration)
		j.resultID = uuid.NewString()
	}
}

func (j *job) active(now time.Time, startDelay, duration time.Duration) bool {
	s := j.status(now, startDelay, duration)
	return s == poller.StatusStarted || s == poller.StatusRunning
}

func (j *job) doc(now time.Time, startDelay, duration time.Duration) StatusDoc {
	j.settle(now, startDelay, duration)
	d := StatusDoc{
		JobID:      j.id.String(),
		ResourceID: j.resourceID,
		JobType:    j.jobType,
		Status:     j.status(now, startDelay, duration),
	}
	start := j.startedAt
	d.StartTime = &start
	if !j.stoppedAt.IsZero() {
		stop := j.stoppedAt
		d.StopTime = &stop
	}
	if j.errorText != "" {
		text := j.errorText
		d.ErrorText = &text
	}
	if j.resultID != "" {
		id := j.resultID
		d.ResultID = &id
	}
	return d
}
