package registry

import (
	"sync"

	"github.com/ruteri/synbio-provenance-registry/interfaces"
)

var (
	admin   = principal(0xad)
	alice   = principal(0xa1)
	bob     = principal(0xb0)
	charlie = principal(0xc4)
)

func principal(b byte) interfaces.Principal {
	var p interfaces.Principal
	for i := range p {
		p[i] = b
	}
	return p
}

// recordingObserver collects observed operations.
type recordingObserver struct {
	mu  sync.Mutex
	ops []interfaces.Operation
}

func (o *recordingObserver) ObserveOperation(op interfaces.Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
}

func (o *recordingObserver) operations() []interfaces.Operation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]interfaces.Operation(nil), o.ops...)
}
