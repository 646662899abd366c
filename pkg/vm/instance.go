package vm

import (
	"sync"
	"time"

	"github.com/easelhq/easel/pkg/domain"
	"github.com/google/uuid"
)

// Instance is the opaque handle to an active script-engine instance. Every
// lifecycle call into the binding names the instance it executes under.
//
// Instances are created and closed by the embedder; the binding only checks
// liveness and passes the handle through to the render runtime. An Instance is
// logically single-threaded: integrators that drive one from multiple
// goroutines must route their calls through Do, which serializes them.
type Instance struct {
	id      string
	label   string
	created time.Time

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Option configures an Instance at creation.
type Option func(*Instance)

// WithLabel attaches a human-readable label, used in logs.
func WithLabel(label string) Option {
	return func(i *Instance) {
		i.label = label
	}
}

// New creates a live instance with a generated ID.
func New(opts ...Option) *Instance {
	inst := &Instance{
		id:      uuid.NewString(),
		created: time.Now(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// ID returns the generated instance identifier.
func (i *Instance) ID() string {
	return i.id
}

// Label returns the configured label, possibly empty.
func (i *Instance) Label() string {
	return i.label
}

// CreatedAt returns the instance creation time.
func (i *Instance) CreatedAt() time.Time {
	return i.created
}

// Closed reports whether Close has been called.
func (i *Instance) Closed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

// Done returns a channel closed when the instance is closed.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Close marks the instance dead. In-flight Do calls finish first; later calls
// fail with domain.ErrInstanceClosed. Close is idempotent.
func (i *Instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	close(i.done)
	return nil
}

// Do runs fn serialized against every other Do call on this instance. This is
// the tool embedders use to uphold the one-logical-order calling contract when
// more than one goroutine touches the same instance.
func (i *Instance) Do(fn func() error) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return domain.ErrInstanceClosed
	}
	return fn()
}

// Check returns domain.ErrInstanceClosed when the handle is nil or closed.
// The binding calls this before every operation.
func (i *Instance) Check() error {
	if i == nil {
		return domain.ErrInstanceClosed
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return domain.ErrInstanceClosed
	}
	return nil
}
