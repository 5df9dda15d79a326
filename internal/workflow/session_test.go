package workflow

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dreheist/drebot/internal/game"
)

type recordingRung struct {
	name string
	log  *[]string
}

func (r recordingRung) Name() string { return r.name }
func (r recordingRung) Attempt(env *Env) {
	*r.log = append(*r.log, r.name)
}

func newTestSession(log *[]string) *Session {
	env := &Env{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	return &Session{
		env: env,
		ladder: []Rung{
			recordingRung{"first", log},
			recordingRung{"second", log},
			recordingRung{"third", log},
		},
	}
}

func TestLadderNotWalkedOnImmediateSuccess(t *testing.T) {
	var walked []string
	s := newTestSession(&walked)

	err := s.runLadder(func() (bool, error) { return true, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(walked) != 0 {
		t.Errorf("ladder walked despite immediate success: %v", walked)
	}
}

func TestLadderWalksInOrderAndStopsOnSuccess(t *testing.T) {
	var walked []string
	s := newTestSession(&walked)

	attempts := 0
	err := s.runLadder(func() (bool, error) {
		attempts++
		// succeed on the attempt after the second rung
		return attempts == 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(walked) != 2 || walked[0] != "first" || walked[1] != "second" {
		t.Errorf("expected rungs [first second], got %v", walked)
	}
}

func TestLadderResetsAfterSuccess(t *testing.T) {
	var walked []string
	s := newTestSession(&walked)

	attempts := 0
	try := func() (bool, error) {
		attempts++
		return attempts%2 == 0, nil // fail, succeed, fail, succeed...
	}

	if err := s.runLadder(try); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.runLadder(try); err != nil {
		t.Fatalf("unexpected error on second invocation: %v", err)
	}

	// each invocation failed once then succeeded after the first rung
	if len(walked) != 2 || walked[0] != "first" || walked[1] != "first" {
		t.Errorf("ladder did not restart from the front: %v", walked)
	}
}

func TestLadderExhaustionIsFatal(t *testing.T) {
	var walked []string
	s := newTestSession(&walked)

	err := s.runLadder(func() (bool, error) { return false, nil })
	if err == nil {
		t.Fatal("expected an error after ladder exhaustion")
	}

	var stateErr *game.UnexpectedStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected UnexpectedStateError, got %T", err)
	}
	if stateErr.Actual != game.StateUnknown {
		t.Errorf("expected actual state Unknown, got %s", stateErr.Actual)
	}
	if len(stateErr.Expected) == 0 {
		t.Error("expected state set must not be empty")
	}
	if len(walked) != 3 {
		t.Errorf("expected all 3 rungs walked, got %v", walked)
	}
}

func TestLadderPropagatesTryErrors(t *testing.T) {
	var walked []string
	s := newTestSession(&walked)

	boom := errors.New("sensor broke")
	err := s.runLadder(func() (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected try error to propagate, got %v", err)
	}
	if len(walked) != 0 {
		t.Errorf("ladder should not walk after a hard error: %v", walked)
	}
}

func TestDefaultLadderOrder(t *testing.T) {
	ladder := defaultLadder(true)
	names := make([]string, len(ladder))
	for i, r := range ladder {
		names[i] = r.Name()
	}

	want := []string{"do nothing", "back out of menus", "back and confirm", "desync stall"}
	if len(names) != len(want) {
		t.Fatalf("expected %d rungs, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("rung %d: expected %q, got %q", i, want[i], names[i])
		}
	}

	withoutDesync := defaultLadder(false)
	if len(withoutDesync) != 3 {
		t.Errorf("desync rung should be absent when disabled, got %d rungs", len(withoutDesync))
	}
}
