package shared

import "time"

// AggregateRoot is implemented by every aggregate the repositories persist
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
	IsStored() bool
	MarkStored()
}

// BaseAggregateRoot carries the optimistic-lock version and the events
// raised since the last save.
//
// stored is runtime-only: repositories set it when the aggregate is loaded
// from or written to the store. A stored aggregate whose key has vanished was
// deleted by someone else and must not be written back.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `json:"version"`

	pending []DomainEvent
	stored  bool
}

// GetVersion returns the version the aggregate was loaded at
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version after a successful conditional write
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues an event for publication after the next save
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events in the order they were raised
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the queued events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// IsStored reports whether the aggregate has been read from or written to a repository
func (a *BaseAggregateRoot) IsStored() bool {
	return a.stored
}

// MarkStored is called by repositories on load and after a write
func (a *BaseAggregateRoot) MarkStored() {
	a.stored = true
}

// NewBaseAggregateRoot starts a fresh, unsaved aggregate at version 1
func NewBaseAggregateRoot(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(now),
		Version:    1,
	}
}
