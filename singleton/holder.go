package singleton

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNilInstance is returned when a constructor yields a nil pointer without an error.
	ErrNilInstance = errors.New("singleton: constructor returned nil instance")

	// ErrConstructorPanic is returned when a constructor panics. The panic value
	// is appended to the message.
	ErrConstructorPanic = errors.New("singleton: panic during construction")
)

// InitError wraps a construction failure with the name of the holder.
type InitError struct {
	// Name is the holder name (see Holder.Name).
	Name string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e InitError) Error() string {
	// Example: singleton: construct "sample.Sample": singleton: constructor returned nil instance
	return "singleton: construct " + strconv.Quote(e.Name) + ": " + e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e InitError) Unwrap() error { return e.Err }

// Option configures a Holder or a Registry.
type Option func(*options)

type options struct {
	name   string
	logger logrus.FieldLogger
}

// WithName sets the name used in logs and errors. Registries ignore it.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used to report construction.
//
// Without it, the logrus standard logger is used, looked up at construction
// time so logging configured after package init still applies.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Holder owns a single lazily-constructed instance of T.
//
// The zero value is ready to use and constructs with new(T). A Holder must not
// be copied after first use.
type Holder[T any] struct {
	once  sync.Once
	ready atomic.Bool

	ctor func() (*T, error)
	opts options

	val *T
	err error
}

// New returns a Holder that constructs its instance with ctor on first access.
//
// A nil ctor falls back to new(T).
func New[T any](ctor func() *T, opts ...Option) *Holder[T] {
	h := &Holder[T]{opts: buildOptions(opts)}
	if ctor != nil {
		h.ctor = func() (*T, error) { return ctor(), nil }
	}
	return h
}

// NewFallible returns a Holder whose constructor may fail.
//
// A nil ctor falls back to new(T).
func NewFallible[T any](ctor func() (*T, error), opts ...Option) *Holder[T] {
	return &Holder[T]{ctor: ctor, opts: buildOptions(opts)}
}

// Get returns the shared instance, constructing it on the first call.
//
// Every call returns the same pointer. If construction failed, Get panics with
// the recorded InitError on this and every later call.
func (h *Holder[T]) Get() *T {
	v, err := h.TryGet()
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet returns the shared instance, constructing it on the first call.
//
// A construction failure is recorded once and returned by every later call;
// the constructor is not retried.
func (h *Holder[T]) TryGet() (*T, error) {
	h.once.Do(h.construct)
	return h.val, h.err
}

// Initialized reports whether the instance has been constructed successfully.
// It never triggers construction.
func (h *Holder[T]) Initialized() bool { return h.ready.Load() }

// Name returns the holder name: the WithName value or the Go type name of T.
func (h *Holder[T]) Name() string {
	if h.opts.name != "" {
		return h.opts.name
	}
	return typeName[T]()
}

func (h *Holder[T]) construct() {
	start := time.Now()

	v, err := h.invoke()
	if err == nil && v == nil {
		err = ErrNilInstance
	}

	log := h.logger().WithField("instance", h.Name())
	if err != nil {
		h.err = InitError{Name: h.Name(), Err: err}
		log.WithError(err).Error("shared instance construction failed")
		return
	}

	h.val = v
	h.ready.Store(true)
	log.WithField("elapsed", time.Since(start)).Debug("shared instance constructed")
}

// invoke runs the constructor and converts a panic into ErrConstructorPanic.
func (h *Holder[T]) invoke() (v *T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("%w: %v", ErrConstructorPanic, rec)
		}
	}()

	if h.ctor == nil {
		return new(T), nil
	}
	return h.ctor()
}

func (h *Holder[T]) logger() logrus.FieldLogger {
	if h.opts.logger != nil {
		return h.opts.logger
	}
	return logrus.StandardLogger()
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func typeName[T any]() string { return typeOf[T]().String() }
