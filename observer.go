// Package componentkit provides Observer pattern interfaces for container events.
// Events use the CloudEvents specification so that they can be forwarded to
// external systems unchanged.
package componentkit

import (
	"context"
	"sort"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer is notified of container events.
type Observer interface {
	// OnEvent is called when an event the observer subscribed to occurs.
	// Observers are called synchronously and should return quickly.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// Subject defines the interface for objects that can be observed.
type Subject interface {
	// RegisterObserver adds an observer. If eventTypes is empty, the
	// observer receives all events.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. It does not fail when the
	// observer was never registered.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends an event to all interested observers.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about currently registered observers.
	GetObservers() []ObserverInfo
}

// ObserverInfo provides information about a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by the container and its extensions.
const (
	EventTypeDefinitionRegistered = "com.componentkit.definition.registered"
	EventTypeDefinitionRemoved    = "com.componentkit.definition.removed"
	EventTypeExtensionLoaded      = "com.componentkit.extension.loaded"
	EventTypeContainerCompiled    = "com.componentkit.container.compiled"
	EventTypeConfigDeprecated     = "com.componentkit.config.deprecated"

	// EventTypeComponentRendered is emitted by hosts that render components
	// and consumed by the data collector.
	EventTypeComponentRendered = "com.componentkit.component.rendered"
)

// FunctionalObserver creates observers from plain functions.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates a new observer that calls handler for each event.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements Observer.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements Observer.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// observerSet is the Subject implementation shared by the container.
// Notification is synchronous: compile is a synchronous, deterministic
// sequence and observers see events in emission order.
type observerSet struct {
	mu        sync.RWMutex
	observers map[string]*observerRegistration
	logger    Logger
}

func newObserverSet(logger Logger) *observerSet {
	return &observerSet{
		observers: make(map[string]*observerRegistration),
		logger:    logger,
	}
}

func (s *observerSet) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	s.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   types,
		registeredAt: time.Now(),
	}
	s.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

func (s *observerSet) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrObserverNil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.observers[observer.ObserverID()]; ok {
		delete(s.observers, observer.ObserverID())
		s.logger.Debug("Observer unregistered", "observerID", observer.ObserverID())
	}
	return nil
}

func (s *observerSet) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}
	if err := ValidateCloudEvent(event); err != nil {
		s.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	s.mu.RLock()
	targets := make([]*observerRegistration, 0, len(s.observers))
	for _, reg := range s.observers {
		if len(reg.eventTypes) > 0 && !reg.eventTypes[event.Type()] {
			continue
		}
		targets = append(targets, reg)
	}
	s.mu.RUnlock()

	// Stable order keeps notification deterministic.
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].observer.ObserverID() < targets[j].observer.ObserverID()
	})
	for _, reg := range targets {
		s.deliver(ctx, reg.observer, event)
	}
	return nil
}

func (s *observerSet) deliver(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", r)
		}
	}()
	if err := observer.OnEvent(ctx, event); err != nil {
		s.logger.Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

func (s *observerSet) GetObservers() []ObserverInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := make([]ObserverInfo, 0, len(s.observers))
	for _, reg := range s.observers {
		types := make([]string, 0, len(reg.eventTypes))
		for t := range reg.eventTypes {
			types = append(types, t)
		}
		sort.Strings(types)
		info = append(info, ObserverInfo{
			ID:           reg.observer.ObserverID(),
			EventTypes:   types,
			RegisteredAt: reg.registeredAt,
		})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].ID < info[j].ID })
	return info
}
