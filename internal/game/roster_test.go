package game

import "testing"

func TestRosterJoin(t *testing.T) {
	t.Parallel()

	r := NewRoster(2)
	alice, err := r.Join("alice")
	if err != nil {
		t.Fatal(err)
	}
	if alice.ID == "" {
		t.Error("player without an id")
	}
	if !alice.Connected {
		t.Error("new player not connected")
	}
	if alice.Assigned() {
		t.Error("new player already assigned")
	}

	if _, err := r.Join("Alice"); err != ErrDuplicateName {
		t.Errorf("duplicate name: got %v, want ErrDuplicateName", err)
	}
	if _, err := r.Join("bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Join("carol"); err != ErrGameFull {
		t.Errorf("full roster: got %v, want ErrGameFull", err)
	}
}

func TestRosterRemove(t *testing.T) {
	t.Parallel()

	r := NewRoster(4)
	alice, _ := r.Join("alice")
	bob, _ := r.Join("bob")

	if err := r.Remove(alice.ID); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Errorf("len after remove: got %d", r.Len())
	}
	if _, err := r.ByID(alice.ID); err != ErrPlayerNotFound {
		t.Errorf("removed player lookup: got %v", err)
	}
	if _, err := r.ByID(bob.ID); err != nil {
		t.Errorf("surviving player lookup: %v", err)
	}
	if err := r.Remove(alice.ID); err != ErrPlayerNotFound {
		t.Errorf("double remove: got %v", err)
	}
}

func TestRosterAssignAndReset(t *testing.T) {
	t.Parallel()

	r := NewRoster(4)
	alice, _ := r.Join("alice")

	r.Assign(alice, 3)
	if alice.OriginalIdx() != 3 || alice.CurrentIdx() != 3 {
		t.Errorf("indices after assign: original %d current %d", alice.OriginalIdx(), alice.CurrentIdx())
	}

	r.SetCurrentIdx(alice, 5)
	if alice.OriginalIdx() != 3 {
		t.Error("original moved with a swap")
	}
	if alice.CurrentIdx() != 5 {
		t.Errorf("current after swap: got %d", alice.CurrentIdx())
	}

	r.ResetRoles()
	if alice.Assigned() {
		t.Error("player still assigned after reset")
	}
}

func TestRosterDoubleAssignPanics(t *testing.T) {
	t.Parallel()

	r := NewRoster(4)
	alice, _ := r.Join("alice")
	r.Assign(alice, 0)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on double assign")
		}
	}()
	r.Assign(alice, 1)
}

func TestRosterConnectedCount(t *testing.T) {
	t.Parallel()

	r := NewRoster(4)
	alice, _ := r.Join("alice")
	_, _ = r.Join("bob")

	if r.ConnectedCount() != 2 {
		t.Fatalf("connected: got %d", r.ConnectedCount())
	}
	alice.Connected = false
	if r.ConnectedCount() != 1 {
		t.Errorf("connected after disconnect: got %d", r.ConnectedCount())
	}
}
