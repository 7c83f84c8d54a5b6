// internal/validator/form.go
package validator

import (
	"fmt"
	"maps"
	"sync"
	"time"
)

// DefaultDelay is how long a field must stay unchanged before it is validated.
const DefaultDelay = 200 * time.Millisecond

// Snapshot is a copy of a Form's state handed to subscribers.
type Snapshot struct {
	Values map[Field]string `json:"values"`
	Errors ErrorMap         `json:"errors"`
	Valid  bool             `json:"valid"`
}

// Option configures a Form at construction time.
type Option func(*Form)

// WithDelay sets the debounce delay. A non-positive delay validates every
// change immediately.
func WithDelay(d time.Duration) Option {
	return func(f *Form) { f.delay = d }
}

// WithRequired restricts the verdict to the given fields. By default every
// field of the form counts; optional fields still pass when left empty
// because their rules accept "".
func WithRequired(fields ...Field) Option {
	return func(f *Form) {
		f.required = make(map[Field]bool, len(fields))
		for _, field := range fields {
			f.required[field] = true
		}
	}
}

// WithRegistry replaces the default rules.
func WithRegistry(r Registry) Option {
	return func(f *Form) { f.registry = r }
}

// WithAfterFunc replaces the timer source used for debouncing.
func WithAfterFunc(after AfterFunc) Option {
	return func(f *Form) { f.after = after }
}

// WithNotify registers fn to be called with a Snapshot after every change to
// the form's values or errors. Calls are serialized and arrive in mutation
// order. fn must not call back into the form's mutating methods or Close.
func WithNotify(fn func(Snapshot)) Option {
	return func(f *Form) { f.notify = fn }
}

// Form owns the values and error messages of one form instance and drives
// the transform, debounce, validate pipeline for each field.
//
// Input methods are meant to be called from one goroutine, the way a UI
// event loop would. Debounced validations land from timer goroutines and are
// safe against concurrent reads, ValidateAll, Reset and Close.
type Form struct {
	fields   []Field
	required map[Field]bool
	registry Registry
	delay    time.Duration
	after    AfterFunc
	notify   func(Snapshot)
	sched    *Scheduler

	// emitMu is held from a mutation through its notify call so subscribers
	// see snapshots in the order the mutations happened. Taken before mu.
	emitMu sync.Mutex

	mu     sync.Mutex
	values map[Field]string
	errors ErrorMap
	closed bool
}

// NewForm builds a Form over fields with every value and error empty.
func NewForm(fields []Field, opts ...Option) (*Form, error) {
	f := &Form{
		fields:   append([]Field(nil), fields...),
		registry: DefaultRegistry(),
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, field := range f.fields {
		if _, ok := f.registry[field]; !ok {
			return nil, fmt.Errorf("%w: %q has no rule", ErrUnknownField, field)
		}
	}
	if f.required == nil {
		f.required = make(map[Field]bool, len(f.fields))
		for _, field := range f.fields {
			f.required[field] = true
		}
	}
	for field := range f.required {
		if !f.has(field) {
			return nil, fmt.Errorf("%w: required field %q is not on the form", ErrUnknownField, field)
		}
	}

	f.sched = NewScheduler(f.after)
	f.resetLocked()
	return f, nil
}

// Fields returns the form's fields in order.
func (f *Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

func (f *Form) has(field Field) bool {
	for _, known := range f.fields {
		if known == field {
			return true
		}
	}
	return false
}

// Change stores the transformed value for field and schedules its
// validation after the debounce delay. Emptying a field validates at once.
func (f *Form) Change(field Field, raw string) error {
	value, err := f.store(field, raw)
	if err != nil {
		return err
	}
	f.sched.Schedule(field, value, f.delay, func(v string) {
		f.record(field, v)
	})
	return nil
}

// ChangeImmediate is Change without debouncing, for select-type inputs.
func (f *Form) ChangeImmediate(field Field, raw string) error {
	value, err := f.store(field, raw)
	if err != nil {
		return err
	}
	f.sched.Cancel(field)
	f.record(field, value)
	return nil
}

// Load stores several values at once without validating them. It is used
// when a whole form arrives in one request.
func (f *Form) Load(values map[Field]string) error {
	for field := range values {
		if !f.has(field) {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	for field, raw := range values {
		f.values[field] = Transform(field, raw)
	}
	snap := f.snapshotLocked()
	f.mu.Unlock()

	f.emit(snap)
	return nil
}

// ValidateAll cancels every pending validation, validates every field
// against its stored value and returns the verdict.
func (f *Form) ValidateAll() bool {
	f.sched.CancelAll()

	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	errs := make(ErrorMap, len(f.fields))
	for _, field := range f.fields {
		errs[field] = f.registry[field](f.values[field])
	}
	f.errors = errs
	snap := f.snapshotLocked()
	f.mu.Unlock()

	f.emit(snap)
	return snap.Valid
}

// Valid reports the current verdict without running any rule.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validLocked()
}

// Reset cancels pending validations and empties every value and error.
func (f *Form) Reset() {
	f.sched.CancelAll()

	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	f.resetLocked()
	snap := f.snapshotLocked()
	f.mu.Unlock()

	f.emit(snap)
}

// Close cancels pending validations; later input calls return ErrClosed.
func (f *Form) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.sched.CancelAll()
}

// Pending reports whether a debounced validation is outstanding for field.
func (f *Form) Pending(field Field) bool {
	return f.sched.Pending(field)
}

func (f *Form) Value(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

func (f *Form) Values() map[Field]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.values)
}

// Errors returns a copy of the ErrorMap; every field has an entry.
func (f *Form) Errors() ErrorMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Form) store(field Field, raw string) (string, error) {
	if !f.has(field) {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	value := Transform(field, raw)

	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return "", ErrClosed
	}
	f.values[field] = value
	snap := f.snapshotLocked()
	f.mu.Unlock()

	f.emit(snap)
	return value, nil
}

// record writes the rule's verdict for value into the ErrorMap.
func (f *Form) record(field Field, value string) {
	msg := f.registry[field](value)

	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.errors[field] = msg
	snap := f.snapshotLocked()
	f.mu.Unlock()

	f.emit(snap)
}

func (f *Form) resetLocked() {
	f.values = make(map[Field]string, len(f.fields))
	f.errors = make(ErrorMap, len(f.fields))
	for _, field := range f.fields {
		f.values[field] = ""
		f.errors[field] = ""
	}
}

func (f *Form) validLocked() bool {
	for field := range f.required {
		if f.errors[field] != "" {
			return false
		}
	}
	return true
}

func (f *Form) snapshotLocked() Snapshot {
	return Snapshot{
		Values: maps.Clone(f.values),
		Errors: maps.Clone(f.errors),
		Valid:  f.validLocked(),
	}
}

func (f *Form) emit(snap Snapshot) {
	if f.notify != nil {
		f.notify(snap)
	}
}
