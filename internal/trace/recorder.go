package trace

import (
	"sync"

	"github.com/roach88/eventchains/internal/chain"
)

// Phase marks where in the call stack an entry was recorded.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseEvent  Phase = "event"
	PhaseAfter  Phase = "after"
)

// Outcome values recorded for PhaseEvent and PhaseAfter entries.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry is one step of a recorded call sequence.
type Entry struct {
	Seq     int64  `json:"seq"`
	Phase   Phase  `json:"phase"`
	Layer   string `json:"layer,omitempty"`
	Event   string `json:"event"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Label renders the entry as "layer:phase" or, for the event itself, the
// event name.
func (e Entry) Label() string {
	if e.Phase == PhaseEvent {
		return e.Event
	}
	return e.Layer + ":" + string(e.Phase)
}

// Recorder collects entries from every layer and event it wraps.
type Recorder struct {
	mu      sync.Mutex
	clock   *chain.Clock
	entries []Entry
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{clock: chain.NewClock()}
}

// Layer returns a pass-through middleware recorded under name.
func (r *Recorder) Layer(name string) chain.Middleware {
	return r.Around(name, chain.MiddlewareFunc(func(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
		return next(ec)
	}))
}

// Around records entry into and exit from mw under name.
func (r *Recorder) Around(name string, mw chain.Middleware) chain.Middleware {
	return chain.MiddlewareFunc(func(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
		r.record(PhaseBefore, name, ev.Name(), nil, false)
		err := mw.Handle(ev, ec, next)
		r.record(PhaseAfter, name, ev.Name(), err, true)
		return err
	})
}

// Wrap returns ev with a PhaseEvent entry recorded after each execution.
// Dependent events stay Dependent.
func (r *Recorder) Wrap(ev chain.Event) chain.Event {
	w := &recordedEvent{Event: ev, rec: r}
	if dep, ok := ev.(chain.Dependent); ok {
		return &recordedDependent{recordedEvent: w, dep: dep}
	}
	return w
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.entries...)
}

// Labels returns Entry.Label for every entry in order.
func (r *Recorder) Labels() []string {
	entries := r.Entries()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label()
	}
	return labels
}

// Reset drops all entries and restarts sequence numbering.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.clock = chain.NewClock()
}

func (r *Recorder) record(phase Phase, layer, event string, err error, withOutcome bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := Entry{
		Seq:   r.clock.Next(),
		Phase: phase,
		Layer: layer,
		Event: event,
	}
	if withOutcome {
		e.Outcome = OutcomeSuccess
		if err != nil {
			e.Outcome = OutcomeFailure
			e.Error = err.Error()
		}
	}
	r.entries = append(r.entries, e)
}

type recordedEvent struct {
	chain.Event
	rec *Recorder
}

func (e *recordedEvent) Execute(ec *chain.ExecContext) error {
	err := e.Event.Execute(ec)
	e.rec.record(PhaseEvent, "", e.Event.Name(), err, true)
	return err
}

type recordedDependent struct {
	*recordedEvent
	dep chain.Dependent
}

func (e *recordedDependent) Requires() []string {
	return e.dep.Requires()
}
