// Package orchestrator drives the scan lifecycle: local validation, a single
// outstanding request to the scanning service, committing accepted results to
// the session store, and a completion signal for read-side consumers.
package orchestrator

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/phishtrail/phishtrail/internal/client"
	"github.com/phishtrail/phishtrail/internal/scan"
	"github.com/phishtrail/phishtrail/internal/store"
)

var tracer = otel.Tracer(instrumentationName)

// ErrScanInFlight rejects a dispatch while another scan is outstanding.
var ErrScanInFlight = errors.New("a scan is already in flight")

// Mode is the input modality of a scan.
type Mode string

const (
	ModeURL   Mode = "url"
	ModeEmail Mode = "email"
	ModeQR    Mode = "qr"
	ModeBulk  Mode = "bulk"
)

// Scanner is the remote collaborator surface the orchestrator dispatches to.
// *client.Client satisfies it.
type Scanner interface {
	ScanURL(ctx context.Context, url string) (*scan.Result, error)
	ScanEmail(ctx context.Context, content string) (*scan.Result, error)
	ScanQR(ctx context.Context, filename string, image []byte) (*scan.Result, error)
	ScanBulk(ctx context.Context, urls []string) (*scan.BulkResponse, error)
}

// Outcome is a completed scan: the service response plus what was committed
// to the store.
type Outcome struct {
	Mode Mode

	// Result is set for url, email, and qr scans; Bulk for bulk scans.
	Result *scan.Result
	Bulk   *scan.BulkResponse

	// Saved holds the entries committed this scan, with store-assigned ids
	// and timestamps. Failed bulk items never appear here.
	Saved []scan.Result

	// History is the full ordered sequence after the saves.
	History []scan.Result

	// Persisted is false when any save degraded to memory-only.
	Persisted bool
}

// Orchestrator accepts one scan at a time, talks to the scanning service,
// and commits accepted results. All methods are safe for concurrent use; a
// second dispatch while one is outstanding fails with ErrScanInFlight.
type Orchestrator struct {
	scanner Scanner
	store   *store.SessionStore
	metrics *scanMetrics

	mu       sync.Mutex
	phase    Phase
	inflight bool
	gen      uint64
	outcome  *Outcome
	errMsg   string
	subs     []func(Outcome)
}

// New creates an Orchestrator dispatching to scanner and saving into sessions.
func New(scanner Scanner, sessions *store.SessionStore) *Orchestrator {
	return &Orchestrator{
		scanner: scanner,
		store:   sessions,
		metrics: newScanMetrics(),
		phase:   PhaseIdle,
	}
}

// OnComplete registers fn to run after every completed scan, once all
// results are saved. Callbacks run synchronously on the dispatching
// goroutine, including for scans that finish after a reset.
func (o *Orchestrator) OnComplete(fn func(Outcome)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subs = append(o.subs, fn)
}

// ScanURL validates and dispatches a single-URL scan.
func (o *Orchestrator) ScanURL(ctx context.Context, rawURL string) (*Outcome, error) {
	gen, err := o.begin(ctx, ModeURL)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "scan url")
	defer span.End()

	trimmed, verr := validateURL(rawURL)
	if verr != nil {
		return nil, o.fail(ctx, span, gen, ModeURL, verr)
	}
	o.takeFlight(gen)

	result, err := o.scanner.ScanURL(ctx, trimmed)
	if err != nil {
		return nil, o.fail(ctx, span, gen, ModeURL, err)
	}
	return o.complete(ctx, span, gen, ModeURL, result, nil), nil
}

// ScanEmail validates and dispatches an email-content scan.
func (o *Orchestrator) ScanEmail(ctx context.Context, content string) (*Outcome, error) {
	gen, err := o.begin(ctx, ModeEmail)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "scan email")
	defer span.End()

	trimmed, verr := validateEmail(content)
	if verr != nil {
		return nil, o.fail(ctx, span, gen, ModeEmail, verr)
	}
	o.takeFlight(gen)

	result, err := o.scanner.ScanEmail(ctx, trimmed)
	if err != nil {
		return nil, o.fail(ctx, span, gen, ModeEmail, err)
	}
	return o.complete(ctx, span, gen, ModeEmail, result, nil), nil
}

// ScanQR validates and dispatches a QR image scan.
func (o *Orchestrator) ScanQR(ctx context.Context, filename string, image []byte) (*Outcome, error) {
	gen, err := o.begin(ctx, ModeQR)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "scan qr")
	defer span.End()

	if verr := validateQR(filename, image); verr != nil {
		return nil, o.fail(ctx, span, gen, ModeQR, verr)
	}
	o.takeFlight(gen)

	result, err := o.scanner.ScanQR(ctx, filename, image)
	if err != nil {
		return nil, o.fail(ctx, span, gen, ModeQR, err)
	}
	return o.complete(ctx, span, gen, ModeQR, result, nil), nil
}

// ScanBulk validates and dispatches one batched scan of up to ten URLs.
// Per-item failures come back inside the outcome; only scored items are
// saved.
func (o *Orchestrator) ScanBulk(ctx context.Context, urls []string) (*Outcome, error) {
	gen, err := o.begin(ctx, ModeBulk)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "scan bulk")
	defer span.End()

	cleaned, verr := validateBulk(urls)
	if verr != nil {
		return nil, o.fail(ctx, span, gen, ModeBulk, verr)
	}
	span.SetAttributes(attribute.Int("phishtrail.bulk.urls", len(cleaned)))
	o.takeFlight(gen)

	resp, err := o.scanner.ScanBulk(ctx, cleaned)
	if err != nil {
		return nil, o.fail(ctx, span, gen, ModeBulk, err)
	}
	return o.complete(ctx, span, gen, ModeBulk, nil, resp), nil
}

// Reset clears the staged outcome and error and returns the visible phase to
// idle. It does not cancel an outstanding request: a dispatch that completes
// later still saves its results and fires the completion signal, and new
// scans stay rejected until it finishes.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.gen++
	o.outcome = nil
	o.errMsg = ""
	if o.phase != PhaseIdle {
		o.toPhaseLocked(PhaseIdle)
	}
}

// Phase returns the visible lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// InFlight reports whether a dispatched request is still outstanding. It
// stays true across a Reset until the request completes.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight
}

// Outcome returns the last successful outcome, or nil when the phase is not
// success.
func (o *Orchestrator) Outcome() *Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcome
}

// LastError returns the user-visible message for the last failure, or ""
// when the phase is not error.
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}

// begin acquires the single-flight guard and moves the machine into
// validating. The returned generation identifies this dispatch; a reset
// invalidates it.
func (o *Orchestrator) begin(ctx context.Context, mode Mode) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inflight {
		o.metrics.record(ctx, mode, "rejected")
		return 0, ErrScanInFlight
	}
	// A new scan from a settled phase implicitly resets the machine.
	if o.phase.Settled() {
		o.toPhaseLocked(PhaseIdle)
	}
	o.toPhaseLocked(PhaseValidating)
	o.outcome = nil
	o.errMsg = ""
	o.inflight = true
	return o.gen, nil
}

// takeFlight marks the dispatch as outstanding unless a reset already
// abandoned it.
func (o *Orchestrator) takeFlight(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen == o.gen {
		o.toPhaseLocked(PhaseInFlight)
	}
}

// fail settles the dispatch as an error and releases the guard. Nothing is
// saved; a reset dispatch keeps the error off the visible state.
func (o *Orchestrator) fail(ctx context.Context, span trace.Span, gen uint64, mode Mode, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	o.metrics.record(ctx, mode, "error")

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen == o.gen {
		o.toPhaseLocked(PhaseError)
		o.errMsg = UserMessage(mode, err)
	}
	o.inflight = false
	return err
}

// complete saves the accepted results, fires the completion signal, and
// settles the dispatch. Saves and the signal happen even when a reset
// abandoned the dispatch; only the visible outcome is suppressed.
func (o *Orchestrator) complete(ctx context.Context, span trace.Span, gen uint64, mode Mode, single *scan.Result, bulk *scan.BulkResponse) *Outcome {
	out := &Outcome{Mode: mode, Result: single, Bulk: bulk, Persisted: true}

	switch {
	case single != nil:
		history, persisted := o.store.Save(ctx, *single)
		out.Saved = history[len(history)-1:]
		out.History = history
		out.Persisted = persisted
		if v, ok := single.Score(); ok {
			span.SetAttributes(
				attribute.Int("phishtrail.scan.score", v),
				attribute.String("phishtrail.scan.label", string(single.Label)),
			)
		}
	case bulk != nil:
		for _, item := range bulk.Results {
			if _, scored := item.Score(); !scored {
				continue
			}
			history, persisted := o.store.Save(ctx, item)
			out.Saved = append(out.Saved, history[len(history)-1])
			out.History = history
			if !persisted {
				out.Persisted = false
			}
		}
		if out.History == nil {
			out.History = o.store.All()
		}
		span.SetAttributes(
			attribute.Int("phishtrail.bulk.scanned", bulk.Summary.Scanned),
			attribute.Int("phishtrail.bulk.saved", len(out.Saved)),
		)
	}

	o.mu.Lock()
	if gen == o.gen {
		o.toPhaseLocked(PhaseSuccess)
		o.outcome = out
	}
	o.inflight = false
	subs := make([]func(Outcome), len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	o.metrics.record(ctx, mode, "success")
	for _, fn := range subs {
		fn(*out)
	}
	return out
}

// toPhaseLocked drives a transition. Transitions are produced internally, so
// an invalid one is a bug, not an input error.
// Must be called with the lock held.
func (o *Orchestrator) toPhaseLocked(target Phase) {
	if err := o.phase.ValidateTransition(target); err != nil {
		panic(err)
	}
	o.phase = target
}

// UserMessage collapses err into the single message shown to the user. A
// local validation reason wins, then the service's own detail message, then
// a mode-specific fallback.
func UserMessage(mode Mode, err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var se *client.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallbackMessage(mode)
}

func fallbackMessage(mode Mode) string {
	switch mode {
	case ModeURL:
		return "Could not scan URL. Is the scanning service reachable?"
	case ModeEmail:
		return "Could not scan email. Is the scanning service reachable?"
	case ModeQR:
		return "Could not scan QR image. Is the scanning service reachable?"
	case ModeBulk:
		return "Could not run bulk scan. Is the scanning service reachable?"
	default:
		return "Scan failed. Is the scanning service reachable?"
	}
}
