package deliver

import (
	"context"
	"errors"
	"fmt"

	"github.com/venturedigest/venturedigest/pkg/curate"
)

// Deliverer ships a digest to a specific destination.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, d *curate.Digest) error
}

// Manager broadcasts a digest to all registered deliverers.
type Manager struct {
	deliverers []Deliverer
}

// NewManager creates a new delivery manager.
func NewManager(deliverers []Deliverer) *Manager {
	return &Manager{deliverers: deliverers}
}

// HasDeliverers returns true if at least one deliverer is configured.
func (m *Manager) HasDeliverers() bool {
	return len(m.deliverers) > 0
}

// Broadcast ships the digest to every destination. One destination
// failing does not stop the others; the errors are joined.
func (m *Manager) Broadcast(ctx context.Context, d *curate.Digest) error {
	var errs []error
	for _, deliverer := range m.deliverers {
		if err := deliverer.Deliver(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", deliverer.Name(), err))
		}
	}
	return errors.Join(errs...)
}
