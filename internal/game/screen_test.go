package game

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

type staticSensor struct {
	text string
	err  error
}

func (s *staticSensor) Capture(left, top, width, height float64, includeFrame bool) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func testScreen(sensor Sensor) *Screen {
	return NewScreen(slog.New(slog.NewTextHandler(io.Discard, nil)), sensor)
}

func TestPredicateMissesWithoutKeywords(t *testing.T) {
	s := testScreen(&staticSensor{text: "completely unrelated screen content"})

	got, err := s.IsWarningPage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("predicate matched text containing none of its keywords")
	}
}

func TestEmptyKeywordSetNeverMatches(t *testing.T) {
	s := testScreen(&staticSensor{})
	empty := pattern{region: regionFull}

	if s.matches(empty, "ALERT WARNING LAUNCHING SESSION") {
		t.Error("an empty keyword set must never match, even against non-empty text")
	}
	if s.matches(empty, "") {
		t.Error("an empty keyword set must never match empty text")
	}
}

func TestPredicateMatchingIsCaseInsensitive(t *testing.T) {
	s := testScreen(&staticSensor{text: "Alert: connection to session lost"})

	got, err := s.IsWarningPage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("predicate should match keywords regardless of recognized casing")
	}
}

func TestPredicatePrefersPrefetchedText(t *testing.T) {
	sensor := &staticSensor{err: errors.New("should not be called")}
	s := testScreen(sensor)

	got, err := s.IsWarningPage("WARNING something happened")
	if err != nil {
		t.Fatalf("prefetched text should bypass the sensor: %v", err)
	}
	if !got {
		t.Error("predicate missed on prefetched text")
	}
}

func TestSensorUnavailableIsTypedFault(t *testing.T) {
	s := testScreen(&staticSensor{err: ErrNoTarget})

	_, err := s.IsWarningPage()

	var stateErr *UnexpectedStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected UnexpectedStateError, got %v", err)
	}
	if stateErr.Actual != StateOff {
		t.Errorf("expected actual state Off, got %s", stateErr.Actual)
	}
}

func TestJobSetupStatusCounts(t *testing.T) {
	s := testScreen(&staticSensor{
		text: "AGENCY CONTRACT TEAM LINEUP P1 JOINED P2 JOINED P3 JOINING P4 ON CALL",
	})

	snap, err := s.JobSetupStatus()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.InLobby {
		t.Fatal("panel text should report in-lobby")
	}
	if snap.Joined != 2 || snap.Joining != 1 || snap.Standby != 1 {
		t.Errorf("wrong counts: joined=%d joining=%d standby=%d", snap.Joined, snap.Joining, snap.Standby)
	}
}

func TestJobSetupStatusOffPanel(t *testing.T) {
	s := testScreen(&staticSensor{text: "freemode scenery, JOINED is a red herring"})

	snap, err := s.JobSetupStatus()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.InLobby {
		t.Error("off-panel text must not report in-lobby")
	}
	if snap.Joined != 0 || snap.Joining != 0 || snap.Standby != 0 {
		t.Error("off-panel counts must be zero")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want State
	}{
		{"warning page", "ALERT connection lost", StateWarningPage},
		{"setup panel", "AGENCY CONTRACT TEAM LINEUP", StateJobPanelFirst},
		{"second page", "MATCHMAKING WEAPON LOADOUT", StateJobPanelSecond},
		{"scoreboard", "RESULTS POTENTIAL CUT $120,000", StateScoreboard},
		{"main menu", "STORY MODE ONLINE", StateMainMenu},
		{"loading", "LOADING", StateLoadingScreen},
		{"unrecognized", "nothing of note on screen", StateUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testScreen(&staticSensor{text: tc.text})
			got, err := s.Classify()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClassifyWithoutTarget(t *testing.T) {
	s := testScreen(&staticSensor{err: ErrNoTarget})

	got, err := s.Classify()

	var stateErr *UnexpectedStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected UnexpectedStateError when the window is gone, got %v", err)
	}
	if stateErr.Actual != StateOff {
		t.Errorf("expected actual state Off, got %s", stateErr.Actual)
	}
	if got != StateOff {
		t.Errorf("expected Off alongside the fault, got %s", got)
	}
}

func TestJobMarkerDistinctFromWarning(t *testing.T) {
	s := testScreen(&staticSensor{text: "PRESS ~INPUT~ TO START THE CONTRACT"})

	marker, err := s.IsJobMarker()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !marker {
		t.Error("trigger prompt text should match the job marker")
	}
	warning, err := s.IsWarningPage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning {
		t.Error("trigger prompt text must not read as a warning page")
	}

	s = testScreen(&staticSensor{text: "ALERT connection to session lost"})
	marker, err = s.IsJobMarker()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marker {
		t.Error("an alert dialog must not read as the job marker")
	}
}
