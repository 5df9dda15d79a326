package game

import "testing"

func TestEveryStateHasCapabilityRecord(t *testing.T) {
	for state := range stateNames {
		if _, ok := capabilityTable[state]; !ok {
			t.Errorf("state %s has no capability record", state)
		}
	}
	if len(capabilityTable) != len(stateNames) {
		t.Errorf("capability table has %d entries, state set has %d", len(capabilityTable), len(stateNames))
	}
}

func TestUnmappedStateFallsBack(t *testing.T) {
	bogus := State(9999)
	if bogus.String() != "Unknown" {
		t.Errorf("unmapped state should stringify to Unknown, got %s", bogus)
	}
	if caps := bogus.Capabilities(); caps.Running || caps.Playable || caps.Online {
		t.Errorf("unmapped state should have all-false capabilities, got %+v", caps)
	}
}

func TestCapabilityInvariants(t *testing.T) {
	if StateOff.Capabilities().Running {
		t.Error("Off must not be running")
	}
	if StateUnknown.Capabilities().Running {
		t.Error("Unknown must not claim the game is running")
	}
	for state := range stateNames {
		caps := state.Capabilities()
		if caps.Playable && !caps.Running {
			t.Errorf("%s is playable but not running", state)
		}
		if caps.Online && !caps.Running {
			t.Errorf("%s is online but not running", state)
		}
	}
}

func TestUnexpectedStateRequiresExpectedSet(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("constructing an unexpected-state fault with no expected states must panic")
		}
	}()
	NewUnexpectedState(StateOff)
}
