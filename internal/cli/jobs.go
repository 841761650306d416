package cli

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/optima/pkg/cache"
	"github.com/matzehuels/optima/pkg/config"
	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/jobapi"
	"github.com/matzehuels/optima/pkg/poller"
	"github.com/matzehuels/optima/pkg/taskapi"
)

// jobRef names a task on the server as "<resource-id>:<job-type>".
type jobRef struct {
	ResourceID string
	JobType    string
}

func (r jobRef) ID() string   { return r.ResourceID + ":" + r.JobType }
func (r jobRef) Path() string { return jobapi.TaskPath(r.ResourceID, r.JobType) }

// pollDelay picks the delay between checks of r. An explicit override wins;
// optimizations run for minutes and use the slow interval.
func pollDelay(r jobRef, override time.Duration, cfg config.PollConfig) time.Duration {
	switch {
	case override > 0:
		return override
	case r.JobType == taskapi.TypeOptimize:
		return cfg.SlowInterval
	default:
		return cfg.Interval
	}
}

func parseJobRef(s string) (jobRef, error) {
	if err := errors.ValidateJobID(s); err != nil {
		return jobRef{}, err
	}
	resource, jobType, ok := strings.Cut(s, ":")
	if !ok {
		return jobRef{}, errors.New(errors.ErrCodeInvalidJobID, "job %q: want <resource-id>:<job-type>", s)
	}
	if err := errors.ValidatePathSegment("resource id", resource); err != nil {
		return jobRef{}, err
	}
	if err := errors.ValidatePathSegment("job type", jobType); err != nil {
		return jobRef{}, err
	}
	return jobRef{ResourceID: resource, JobType: jobType}, nil
}

func parseJobRefs(args []string) ([]jobRef, error) {
	refs := make([]jobRef, 0, len(args))
	seen := make(map[string]bool, len(args))
	for _, a := range args {
		r, err := parseJobRef(a)
		if err != nil {
			return nil, err
		}
		if seen[r.ID()] {
			continue
		}
		seen[r.ID()] = true
		refs = append(refs, r)
	}
	return refs, nil
}

// =============================================================================
// Outcome History
// =============================================================================

// outcome is the last terminal update seen for a job.
type outcome struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	ResultID   string    `json:"result_id,omitempty"`
	Checks     int       `json:"checks"`
	FinishedAt time.Time `json:"finished_at"`
}

func newOutcome(id, url string, u poller.Update, checks int, at time.Time) outcome {
	o := outcome{ID: id, URL: url, Status: u.Status(), Checks: checks, FinishedAt: at}
	switch u := u.(type) {
	case poller.Completed:
		o.ResultID = u.Payload.String("result_id")
	case poller.Failed:
		o.Reason = u.Reason()
	}
	return o
}

// indexID is the job id under which the list of recorded ids is stored.
const indexID = "_index"

// history stores outcomes in the cache.
type history struct {
	cache cache.Cache
	keyer cache.Keyer
}

func newHistory(c cache.Cache) *history {
	return &history{cache: c, keyer: cache.NewDefaultKeyer()}
}

func (h *history) record(ctx context.Context, o outcome) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	if err := h.cache.Set(ctx, h.keyer.JobKey(o.ID), data, cache.TTLJobOutcome); err != nil {
		return err
	}

	ids, _ := h.ids(ctx)
	if slices.Contains(ids, o.ID) {
		return nil
	}
	ids = append(ids, o.ID)
	slices.Sort(ids)
	data, _ = json.Marshal(ids)
	return h.cache.Set(ctx, h.keyer.JobKey(indexID), data, cache.TTLJobOutcome)
}

func (h *history) get(ctx context.Context, id string) (outcome, bool, error) {
	data, ok, err := h.cache.Get(ctx, h.keyer.JobKey(id))
	if err != nil || !ok {
		return outcome{}, false, err
	}
	var o outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return outcome{}, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode outcome for %s", id)
	}
	return o, true, nil
}

func (h *history) ids(ctx context.Context) ([]string, error) {
	data, ok, err := h.cache.Get(ctx, h.keyer.JobKey(indexID))
	if err != nil || !ok {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode job index")
	}
	return ids, nil
}
