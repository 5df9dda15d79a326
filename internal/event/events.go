package event

import (
	"time"

	"github.com/google/uuid"
)

type Event interface {
	ID() string
	OccurredAt() time.Time
	Message() string
}

type BaseEvent struct {
	id         string
	occurredAt time.Time
	message    string
}

func (b BaseEvent) ID() string {
	return b.id
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func (b BaseEvent) Message() string {
	return b.message
}

func Text(message string) BaseEvent {
	return BaseEvent{
		id:         uuid.NewString(),
		occurredAt: time.Now(),
		message:    message,
	}
}

// GameLaunchedEvent fires after the game window appeared and the main menu loaded.
type GameLaunchedEvent struct {
	BaseEvent
	PID uint32
}

func GameLaunched(be BaseEvent, pid uint32) GameLaunchedEvent {
	return GameLaunchedEvent{BaseEvent: be, PID: pid}
}

// SessionObtainedEvent fires when an invite-only session is entered.
type SessionObtainedEvent struct {
	BaseEvent
}

func SessionObtained(be BaseEvent) SessionObtainedEvent {
	return SessionObtainedEvent{BaseEvent: be}
}

// JobStartedEvent fires when the hosted job leaves the lobby and begins.
type JobStartedEvent struct {
	BaseEvent
	Joined int
}

func JobStarted(be BaseEvent, joined int) JobStartedEvent {
	return JobStartedEvent{BaseEvent: be, Joined: joined}
}

// CycleAbortedEvent fires when a cycle is abandoned without escalation,
// e.g. nobody joined the lobby in time.
type CycleAbortedEvent struct {
	BaseEvent
	Reason string
}

func CycleAborted(be BaseEvent, reason string) CycleAbortedEvent {
	return CycleAbortedEvent{BaseEvent: be, Reason: reason}
}

// ErrorEvent fires for failures that forced a game restart or daemon backoff.
type ErrorEvent struct {
	BaseEvent
}

func Error(be BaseEvent) ErrorEvent {
	return ErrorEvent{BaseEvent: be}
}

// ChatHealthEvent fires on edge transitions of the outbound chat channel.
type ChatHealthEvent struct {
	BaseEvent
	Healthy bool
}

func ChatHealth(be BaseEvent, healthy bool) ChatHealthEvent {
	return ChatHealthEvent{BaseEvent: be, Healthy: healthy}
}
