package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/ssoprobe/internal/interfaces"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/probe"
)

var (
	ErrUnknownProbe       = errors.New("unknown probe")
	ErrOrchestratorClosed = errors.New("orchestrator closed")
)

type ActivationEventType string

const (
	ActivationEventStatus ActivationEventType = "status"
	ActivationEventResult ActivationEventType = "result"
)

type ActivationEvent struct {
	ActivationID string              `json:"activation_id"`
	Kind         model.ProbeKind     `json:"kind"`
	Type         ActivationEventType `json:"type"`

	Status    model.ProbeStatus `json:"status"`
	Error     string            `json:"error,omitempty"`
	ErrorKind model.ErrorKind   `json:"error_kind,omitempty"`

	// Set on the final event.
	Result *model.ProbeResult `json:"result,omitempty"`
}

// Activation is one trigger of a probe, tracked from awaiting to a terminal
// status.
type Activation struct {
	ID        string               `json:"id"`
	Kind      model.ProbeKind      `json:"kind"`
	Request   model.ProbeRequest   `json:"request"`
	Status    model.ProbeStatus    `json:"status"`
	Error     string               `json:"error,omitempty"`
	StartedAt time.Time            `json:"started_at"`
	EndedAt   time.Time            `json:"ended_at"`
	Result    *model.ProbeResult   `json:"result,omitempty"`
	Events    chan ActivationEvent `json:"-"`

	done chan struct{}
}

// Done is closed once the activation reached a terminal status.
func (a *Activation) Done() <-chan struct{} {
	return a.done
}

type Orchestrator struct {
	cfg    *Config
	prober interfaces.Prober
	logger logging.Logger

	slotsMu sync.Mutex
	slots   map[model.ProbeKind]*probe.Slot

	activationsMu sync.Mutex
	activations   map[string]*Activation
	cancels       map[string]context.CancelCauseFunc
	closed        bool

	wg sync.WaitGroup
}

// NewOrchestrator ties together config, the probe runner and logger.
func NewOrchestrator(cfg *Config, prober interfaces.Prober, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:         cfg,
		prober:      prober,
		logger:      logger,
		slots:       make(map[model.ProbeKind]*probe.Slot),
		activations: make(map[string]*Activation),
		cancels:     make(map[string]context.CancelCauseFunc),
	}
}

func (o *Orchestrator) slotFor(kind model.ProbeKind) *probe.Slot {
	o.slotsMu.Lock()
	defer o.slotsMu.Unlock()
	s, ok := o.slots[kind]
	if !ok {
		s = &probe.Slot{}
		o.slots[kind] = s
	}
	return s
}

func (o *Orchestrator) emit(a *Activation, ev ActivationEvent) {
	// Non-blocking send; drop if buffer is full.
	select {
	case a.Events <- ev:
	default:
	}
}

// Activate starts req in the background. A pending activation of the same
// probe is superseded.
func (o *Orchestrator) Activate(ctx context.Context, req model.ProbeRequest) (*Activation, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProbe, req.Kind)
	}
	if req.Page == "" {
		req.Page = o.cfg.PageURL
	}

	buf := o.cfg.EventBuffer
	if buf <= 0 {
		buf = 16
	}
	a := &Activation{
		ID:        uuid.New().String(),
		Kind:      req.Kind,
		Request:   req,
		Status:    model.StatusAwaiting,
		StartedAt: time.Now().UTC(),
		Events:    make(chan ActivationEvent, buf),
		done:      make(chan struct{}),
	}

	o.activationsMu.Lock()
	if o.closed {
		o.activationsMu.Unlock()
		return nil, ErrOrchestratorClosed
	}
	o.pruneLocked(a.StartedAt)
	o.activations[a.ID] = a
	o.wg.Add(1)
	o.activationsMu.Unlock()

	slotCtx, ticket, release := o.slotFor(req.Kind).Begin(ctx, o.cfg.Timeout(req.Kind))
	runCtx, cancel := context.WithCancelCause(slotCtx)

	o.activationsMu.Lock()
	o.cancels[a.ID] = cancel
	o.activationsMu.Unlock()

	o.emit(a, ActivationEvent{
		ActivationID: a.ID,
		Kind:         a.Kind,
		Type:         ActivationEventStatus,
		Status:       model.StatusAwaiting,
	})
	o.logger.Debug("probe activated",
		logging.Field{Key: "activation_id", Value: a.ID},
		logging.Field{Key: "probe", Value: string(a.Kind)})

	go func() {
		defer o.wg.Done()
		defer release()
		defer cancel(nil)

		res := o.prober.Run(runCtx, &req)
		res.ID = a.ID
		if res.Status == model.StatusRendered && !ticket.Current() {
			discard(res)
		}
		o.finish(a, res)
	}()

	return a, nil
}

// discard turns a completion that lost its slot into a superseded result.
func discard(res *model.ProbeResult) {
	res.Status = model.StatusSuperseded
	res.ErrorKind = model.ErrorSuperseded
	res.Error = probe.ErrSuperseded.Error()
	res.Echo, res.Frame, res.Fetch, res.Token = nil, nil, nil, nil
}

func (o *Orchestrator) finish(a *Activation, res *model.ProbeResult) {
	o.activationsMu.Lock()
	a.Status = res.Status
	a.Error = res.Error
	a.EndedAt = res.EndedAt
	a.Result = res
	delete(o.cancels, a.ID)
	o.activationsMu.Unlock()

	evType := ActivationEventResult
	if res.Status != model.StatusRendered {
		evType = ActivationEventStatus
	}
	o.emit(a, ActivationEvent{
		ActivationID: a.ID,
		Kind:         a.Kind,
		Type:         evType,
		Status:       res.Status,
		Error:        res.Error,
		ErrorKind:    res.ErrorKind,
		Result:       res,
	})

	o.logger.Info("probe finished",
		logging.Field{Key: "activation_id", Value: a.ID},
		logging.Field{Key: "probe", Value: string(a.Kind)},
		logging.Field{Key: "status", Value: string(res.Status)},
		logging.Field{Key: "duration_ms", Value: res.EndedAt.Sub(res.StartedAt).Milliseconds()})

	// Close events channel so websocket loop can terminate cleanly
	close(a.Events)
	close(a.done)
}

// Run activates req and waits for its result.
func (o *Orchestrator) Run(ctx context.Context, req model.ProbeRequest) (*model.ProbeResult, error) {
	a, err := o.Activate(ctx, req)
	if err != nil {
		return nil, err
	}
	<-a.done
	return a.Result, nil
}

// Cancel aborts a pending activation. It reports whether one was pending.
func (o *Orchestrator) Cancel(id string) bool {
	o.activationsMu.Lock()
	cancel := o.cancels[id]
	o.activationsMu.Unlock()
	if cancel == nil {
		return false
	}
	cancel(probe.ErrCanceled)
	return true
}

// Get returns a snapshot of the activation, or nil.
func (o *Orchestrator) Get(id string) *Activation {
	o.activationsMu.Lock()
	defer o.activationsMu.Unlock()
	a, ok := o.activations[id]
	if !ok {
		return nil
	}
	snapshot := *a
	return &snapshot
}

// List returns snapshots of all retained activations, oldest first.
func (o *Orchestrator) List() []Activation {
	o.activationsMu.Lock()
	out := make([]Activation, 0, len(o.activations))
	for _, a := range o.activations {
		out = append(out, *a)
	}
	o.activationsMu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

func (o *Orchestrator) pruneLocked(now time.Time) {
	keep := o.cfg.ActivationRetention
	if keep <= 0 {
		return
	}
	for id, a := range o.activations {
		if a.Status.Terminal() && now.Sub(a.EndedAt) > keep {
			delete(o.activations, id)
		}
	}
}

// Shutdown cancels pending activations and waits for them to finish.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.activationsMu.Lock()
	o.closed = true
	for _, cancel := range o.cancels {
		cancel(probe.ErrCanceled)
	}
	o.activationsMu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for activations: %w", ctx.Err())
	}
}
