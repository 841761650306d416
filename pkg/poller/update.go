package poller

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/optima/pkg/errors"
)

// Server-reported job states.
const (
	StatusStarted   = "started"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// Payload is a decoded status document.
type Payload struct {
	Status string         `json:"status"`
	Fields map[string]any `json:"fields,omitempty"`
	Raw    []byte         `json:"-"`
}

// DecodePayload parses a status document. The "status" member becomes
// Status; every member is kept in Fields.
func DecodePayload(data []byte) (*Payload, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode status document")
	}
	p := &Payload{Fields: fields, Raw: data}
	if s, ok := fields["status"].(string); ok {
		p.Status = s
	}
	return p, nil
}

// String returns a field as a string, or "" when absent or null.
func (p *Payload) String(key string) string {
	if p == nil {
		return ""
	}
	switch v := p.Fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Update is the outcome of one status check. It is one of [Started],
// [Running], [Completed] or [Failed].
type Update interface {
	// Status is the classified kind: "started", "running", "completed" or
	// "failed".
	Status() string
	// Terminal reports whether polling stops after this update.
	Terminal() bool

	update()
}

// Started means the server accepted the job but has not begun work.
type Started struct{ Payload *Payload }

// Running means the job is in progress.
type Running struct{ Payload *Payload }

// Completed means the job finished successfully.
type Completed struct{ Payload *Payload }

// Failed means polling ended without success: the server reported an error
// or cancellation, returned an unrecognised status, or could not be reached.
// Err is set for transport failures; Payload is set whenever a document was
// received.
type Failed struct {
	Payload *Payload
	Err     error
}

func (Started) Status() string   { return StatusStarted }
func (Running) Status() string   { return StatusRunning }
func (Completed) Status() string { return StatusCompleted }
func (Failed) Status() string    { return "failed" }

func (Started) Terminal() bool   { return false }
func (Running) Terminal() bool   { return false }
func (Completed) Terminal() bool { return true }
func (Failed) Terminal() bool    { return true }

func (Started) update()   {}
func (Running) update()   {}
func (Completed) update() {}
func (Failed) update()    {}

// Reason describes why the job failed.
func (f Failed) Reason() string {
	if f.Err != nil {
		return f.Err.Error()
	}
	if f.Payload == nil {
		return "no status"
	}
	if text := f.Payload.String("error_text"); text != "" {
		return text
	}
	if f.Payload.Status == "" {
		return "status missing"
	}
	return f.Payload.Status
}

// AsError converts the failure into a structured error.
func (f Failed) AsError(id string) error {
	if f.Err != nil {
		code := errors.GetCode(f.Err)
		if code == "" {
			code = errors.ErrCodeNetwork
		}
		return errors.Wrap(code, f.Err, "poll %s", id)
	}
	je := &errors.JobError{JobID: id}
	if f.Payload != nil {
		je.Status = f.Payload.Status
		je.ErrorText = f.Payload.String("error_text")
	}
	return je
}

// Classify maps a status document to an update. Matching is
// case-insensitive; anything other than started, running or completed is a
// failure.
func Classify(p *Payload) Update {
	if p == nil {
		return Failed{}
	}
	switch strings.ToLower(p.Status) {
	case StatusStarted:
		return Started{Payload: p}
	case StatusRunning:
		return Running{Payload: p}
	case StatusCompleted:
		return Completed{Payload: p}
	default:
		return Failed{Payload: p}
	}
}
