package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// StepTrace is one serialized engine step emitted by JSONStepTracer.
type StepTrace struct {
	RunID        string    `json:"run_id"`
	Step         int       `json:"step"`
	Time         float64   `json:"time"`
	Population   int       `json:"population"`
	TotalVolume  float64   `json:"total_volume"`
	Divisions    int       `json:"divisions"`
	Removals     int       `json:"removals"`
	PhaseChanges int       `json:"phase_changes"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// JSONStepTracer serializes step traces as JSON lines to a writer and
// retains them for inspection.
type JSONStepTracer struct {
	mu      sync.Mutex
	entries []StepTrace
	enc     *json.Encoder
}

// NewJSONStepTracer constructs a tracer writing to w. A nil writer retains
// entries without emitting them.
func NewJSONStepTracer(w io.Writer) *JSONStepTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONStepTracer{enc: enc}
}

// Trace records one step. The timestamp is filled in when absent.
func (t *JSONStepTracer) Trace(entry StepTrace) {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	if t.enc != nil {
		_ = t.enc.Encode(entry)
	}
	t.mu.Unlock()
}

// Entries returns a copy of all recorded traces.
func (t *JSONStepTracer) Entries() []StepTrace {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StepTrace, len(t.entries))
	copy(out, t.entries)
	return out
}
