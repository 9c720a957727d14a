// Package checkout drives a single registration attempt through the
// payment gateway: create an order, wait for the gateway callback, verify
// the signature server-side, then hand the confirmed payment to the
// registration flow.  All transitions are serialized behind one mutex so a
// run can never hold two states at once.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brajcamp/camp-registration/internal/model"
	"github.com/brajcamp/camp-registration/internal/sched"
)

// State is the orchestrator's position in the checkout flow.
type State string

const (
	StateIdle             State = "idle"              // closed, nothing selected
	StateSelectionPending State = "selection_pending" // form open, waiting for a choice
	StateSubmitting       State = "submitting"        // order creation in flight
	StateAwaitingCallback State = "awaiting_callback" // gateway widget open, waiting for payment
	StateVerifying        State = "verifying"         // signature check in flight
	StateSucceeded        State = "succeeded"         // payment verified
	StateRedirected       State = "redirected"        // handed off to a hosted payment page
	StateFailed           State = "failed"            // terminal, see Reason
)

// FailureReason classifies a failed run.
type FailureReason string

const (
	ReasonOrderCreation FailureReason = "order_creation_error"
	ReasonMismatch      FailureReason = "verification_mismatch"
	ReasonTimeout       FailureReason = "timeout"
)

var (
	ErrNotOpen       = errors.New("checkout: not open")
	ErrNoSelection   = errors.New("checkout: no accommodation selected")
	ErrBadSelection  = errors.New("checkout: unknown accommodation kind")
	ErrInFlight      = errors.New("checkout: order creation already in flight")
	ErrBadState      = errors.New("checkout: operation not valid in current state")
	ErrStrayCallback = errors.New("checkout: callback with no awaiting order")
)

// Order is the gateway order a run pays against.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
}

// OrderCreator creates a gateway order for the chosen accommodation.
// Implementations call the order endpoint over HTTP.
type OrderCreator interface {
	CreateOrder(ctx context.Context, kind model.Accommodation) (Order, error)
}

// Verifier checks a gateway callback's signature server-side.  A false
// return with nil error means the signature did not match.
type Verifier interface {
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error)
}

// Result is the verified payment handed to the success listener.
type Result struct {
	Devotee   model.Devotee
	Selection model.Accommodation
	OrderID   string
	PaymentID string
	Signature string
}

// Orchestrator runs one checkout attempt at a time.  It is safe for
// concurrent use; overlapping Proceed calls collapse into a single order
// creation.
type Orchestrator struct {
	mu        sync.Mutex
	state     State
	reason    FailureReason
	selection model.Accommodation
	devotee   model.Devotee
	order     Order

	orders    OrderCreator
	verifier  Verifier
	onSuccess func(Result)

	sch     *sched.Scheduler
	cbTimer *sched.Handle
	timeout time.Duration
	mounted bool
}

// DefaultTimeout bounds each suspension point of a run: the order-creation
// call and the wait for the gateway callback.  A gateway that answers
// slower, or a callback that never arrives, fails the run instead of
// stalling the form.
const DefaultTimeout = 10 * time.Second

// NewOrchestrator wires an orchestrator to its gateway ports.  onSuccess
// receives every verified payment and may be nil.
func NewOrchestrator(orders OrderCreator, verifier Verifier, onSuccess func(Result)) *Orchestrator {
	return &Orchestrator{
		state:     StateIdle,
		orders:    orders,
		verifier:  verifier,
		onSuccess: onSuccess,
		sch:       sched.New(),
		timeout:   DefaultTimeout,
	}
}

// SetTimeout overrides the order-creation deadline.  Call before Open.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	o.mu.Lock()
	o.timeout = d
	o.mu.Unlock()
}

// State reports the current position in the flow.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Reason reports why the last run failed.  Empty unless State is
// StateFailed.
func (o *Orchestrator) Reason() FailureReason {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reason
}

// Open starts a fresh run.  Any previous outcome, including a terminal
// Succeeded or Failed, is discarded.
func (o *Orchestrator) Open() {
	o.mu.Lock()
	o.mounted = true
	o.state = StateSelectionPending
	o.reason = ""
	o.selection = ""
	o.devotee = model.Devotee{}
	o.order = Order{}
	o.stopCallbackTimerLocked()
	o.mu.Unlock()
}

// Close abandons the current run.  Later callbacks and in-flight results
// are dropped rather than mutating a closed form.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.mounted = false
	o.state = StateIdle
	o.stopCallbackTimerLocked()
	o.mu.Unlock()
}

// Select records the devotee's details and accommodation choice.  Only
// valid while the form is open and no order is in flight.
func (o *Orchestrator) Select(d model.Devotee, kind model.Accommodation) error {
	if _, ok := model.ParseAccommodation(string(kind)); !ok {
		return ErrBadSelection
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.mounted {
		return ErrNotOpen
	}
	if o.state != StateSelectionPending {
		return ErrBadState
	}
	o.devotee = d
	o.selection = kind
	return nil
}

// Proceed creates the gateway order and moves the run to
// StateAwaitingCallback.  While an order creation is in flight every
// further Proceed returns ErrInFlight without touching the gateway, so a
// double-clicked pay button yields exactly one order.
func (o *Orchestrator) Proceed(ctx context.Context) error {
	o.mu.Lock()
	if !o.mounted {
		o.mu.Unlock()
		return ErrNotOpen
	}
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return ErrInFlight
	}
	if o.state != StateSelectionPending {
		o.mu.Unlock()
		return ErrBadState
	}
	if o.selection == "" {
		o.mu.Unlock()
		return ErrNoSelection
	}
	o.state = StateSubmitting
	orders := o.orders
	kind := o.selection
	timeout := o.timeout
	o.mu.Unlock()

	// The watchdog cancels the gateway call at the deadline so a hung
	// order request fails the run as a timeout instead of blocking it.
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchdog := o.sch.After(timeout, cancel)
	ord, err := orders.CreateOrder(cctx, kind)
	watchdog.Stop()

	o.mu.Lock()
	if !o.mounted || o.state != StateSubmitting {
		// Closed or reset while the call was in flight.
		o.mu.Unlock()
		return nil
	}
	if err != nil {
		reason := ReasonOrderCreation
		// Only the watchdog's cancellation is a timeout; a cancelled
		// parent context means the caller abandoned the run.
		if ctx.Err() == nil && cctx.Err() != nil {
			reason = ReasonTimeout
		}
		o.failLocked(reason)
		o.mu.Unlock()
		return err
	}
	o.order = ord
	o.state = StateAwaitingCallback
	// The wait for the callback is bounded too: the user may close the
	// gateway widget without it ever reporting back.
	o.cbTimer = o.sch.After(timeout, o.callbackTimedOut)
	o.mu.Unlock()
	return nil
}

// callbackTimedOut fires when no gateway callback arrived in time.  The
// run fails as a timeout so the proceed control frees up again.
func (o *Orchestrator) callbackTimedOut() {
	o.mu.Lock()
	if o.mounted && o.state == StateAwaitingCallback {
		o.cbTimer = nil
		o.failLocked(ReasonTimeout)
	}
	o.mu.Unlock()
}

func (o *Orchestrator) stopCallbackTimerLocked() {
	if o.cbTimer != nil {
		o.cbTimer.Stop()
		o.cbTimer = nil
	}
}

// HandleCallback receives the gateway's payment callback and verifies it
// server-side.  A mismatched or unverifiable signature fails the run; a
// callback for an order this run never created is rejected outright.
func (o *Orchestrator) HandleCallback(ctx context.Context, orderID, paymentID, signature string) error {
	o.mu.Lock()
	if !o.mounted || o.state != StateAwaitingCallback {
		o.mu.Unlock()
		return ErrStrayCallback
	}
	if orderID != o.order.ID {
		o.stopCallbackTimerLocked()
		o.failLocked(ReasonMismatch)
		o.mu.Unlock()
		return ErrStrayCallback
	}
	o.stopCallbackTimerLocked()
	o.state = StateVerifying
	verifier := o.verifier
	o.mu.Unlock()

	ok, err := verifier.VerifyPayment(ctx, orderID, paymentID, signature)

	o.mu.Lock()
	if !o.mounted || o.state != StateVerifying {
		o.mu.Unlock()
		return nil
	}
	if err != nil || !ok {
		o.failLocked(ReasonMismatch)
		o.mu.Unlock()
		if err != nil {
			return err
		}
		return ErrStrayCallback
	}
	o.state = StateSucceeded
	res := Result{
		Devotee:   o.devotee,
		Selection: o.selection,
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	}
	cb := o.onSuccess
	o.mu.Unlock()

	if cb != nil {
		cb(res)
	}
	return nil
}

// HandleDismissed records that the user closed the gateway widget without
// paying.  The run returns to the form so they can try again.
func (o *Orchestrator) HandleDismissed() {
	o.mu.Lock()
	if o.mounted && o.state == StateAwaitingCallback {
		o.state = StateSelectionPending
		o.order = Order{}
		o.stopCallbackTimerLocked()
	}
	o.mu.Unlock()
}

func (o *Orchestrator) failLocked(reason FailureReason) {
	o.state = StateFailed
	o.reason = reason
}
