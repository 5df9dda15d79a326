package game

import (
	"fmt"
	"strings"
)

// TimeoutContext identifies which bounded wait elapsed. Callers branch on this
// tag only, never on the message text.
type TimeoutContext string

const (
	TimeoutWindowStartup TimeoutContext = "game window startup"
	TimeoutMainMenuLoad  TimeoutContext = "main menu load"
	TimeoutStoryModeLoad TimeoutContext = "story mode load"
	TimeoutJoinOnline    TimeoutContext = "join online session"
	TimeoutWaitTeammate  TimeoutContext = "wait for teammate"
	TimeoutPlayerJoin    TimeoutContext = "player join"
	TimeoutRespawn       TimeoutContext = "respawn in agency"
	TimeoutJobPanelOpen  TimeoutContext = "job setup panel open"
	TimeoutJobPanelClose TimeoutContext = "job setup panel close"
	TimeoutJobStart      TimeoutContext = "job start"
	TimeoutCharacterLand TimeoutContext = "character land"
)

// OperationTimeoutError reports that a bounded wait elapsed without the
// expected screen appearing.
type OperationTimeoutError struct {
	Context TimeoutContext
}

func (e *OperationTimeoutError) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Context)
}

// UnexpectedStateError reports a classifier result incompatible with a
// precondition. Expected is never empty.
type UnexpectedStateError struct {
	Expected []State
	Actual   State
}

func (e *UnexpectedStateError) Error() string {
	names := make([]string, len(e.Expected))
	for i, s := range e.Expected {
		names[i] = s.String()
	}
	return fmt.Sprintf("unexpected game state: expected %s, got %s", strings.Join(names, "|"), e.Actual)
}

func NewUnexpectedState(actual State, expected ...State) *UnexpectedStateError {
	if len(expected) == 0 {
		panic("unexpected state error requires at least one expected state")
	}
	return &UnexpectedStateError{Expected: expected, Actual: actual}
}

// Element identifies a UI affordance the workflows depend on.
type Element string

const (
	ElementStoryModeMenu  Element = "story mode menu"
	ElementOnlineModeTab  Element = "online mode tab"
	ElementJobSetupPanel  Element = "job setup panel"
	ElementJobTriggerZone Element = "job trigger zone"
)

// ElementNotFoundError reports that a required UI affordance never appeared.
type ElementNotFoundError struct {
	Element Element
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("ui element not found: %s", e.Element)
}

// ChannelError reports a failure of the outbound notification infrastructure.
// It is always swallowed at the send site; workflows never abort on it.
type ChannelError struct {
	Context string
	Err     error
}

func (e *ChannelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chat channel error: %s: %v", e.Context, e.Err)
	}
	return fmt.Sprintf("chat channel error: %s", e.Context)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
