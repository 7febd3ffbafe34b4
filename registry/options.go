package registry

import (
	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

type config struct {
	observer  interfaces.OperationObserver
	sequences interfaces.SequenceLookup
}

// Option configures a registry at construction time.
type Option func(*config)

// WithObserver attaches an observer notified after every state-changing call.
func WithObserver(observer interfaces.OperationObserver) Option {
	return func(c *config) {
		c.observer = observer
	}
}

// WithSequenceValidation makes DesignRegistry.AddGeneSequence reject sequence ids
// unknown to lookup. Without it, any id is accepted as a weak reference.
// Other registries ignore this option.
func WithSequenceValidation(lookup interfaces.SequenceLookup) Option {
	return func(c *config) {
		c.sequences = lookup
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *config) observe(registry interfaces.RegistryName, name string, caller interfaces.Principal, subject string, err error) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(interfaces.Operation{
		Registry: registry,
		Name:     name,
		Caller:   caller,
		Subject:  subject,
		Err:      err,
	})
}
