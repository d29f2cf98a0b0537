package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps every ledger record carries.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch stamps the entity as modified now.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// AggregateRoot hands over the events raised since it was loaded.
type AggregateRoot interface {
	PendingEvents() []DomainEvent
	ClearEvents()
}

// BaseAggregateRoot adds the version counter and the pending events.
// Version counts changes for the audit trail; records are single-writer and
// nothing locks on it.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now()
	return BaseAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Version:    1,
	}
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

// Raise queues e for publishing once the aggregate is saved.
func (a *BaseAggregateRoot) Raise(e DomainEvent) {
	a.pending = append(a.pending, e)
}

func (a *BaseAggregateRoot) PendingEvents() []DomainEvent { return a.pending }
func (a *BaseAggregateRoot) ClearEvents()                 { a.pending = nil }

var _ AggregateRoot = (*BaseAggregateRoot)(nil)
