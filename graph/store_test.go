package graph

import (
	"errors"
	"testing"
	"time"
)

func TestAddUserDuplicate(t *testing.T) {
	s := NewStore()
	if err := s.AddUser("alice", 30, nil); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	err := s.AddUser("alice", 31, nil)
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Errorf("AddUser() duplicate error = %v, want ErrDuplicateEntity", err)
	}
	if s.UserCount() != 1 {
		t.Errorf("UserCount() = %d, want 1", s.UserCount())
	}
}

func TestAddUserUnknownAge(t *testing.T) {
	s := NewStore()
	if err := s.AddUser("anon", AgeUnknown, nil); err != nil {
		t.Fatalf("AddUser() with AgeUnknown error = %v", err)
	}
	u := s.User("anon")
	if u.AgeKnown() {
		t.Error("AgeKnown() = true, want false")
	}
	if u.IsAdult(18) || u.IsMinor(18) {
		t.Error("unknown age must be neither adult nor minor")
	}
}

func TestAddConnectionUnknownEndpoint(t *testing.T) {
	s := NewStore()
	if err := s.AddUser("alice", 30, nil); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	err := s.AddConnection("alice", "ghost", "friend")
	if !errors.Is(err, ErrUnknownUser) {
		t.Errorf("AddConnection() error = %v, want ErrUnknownUser", err)
	}
	if s.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() = %d, want 0", s.ConnectionCount())
	}
}

func TestAddConnectionIdempotent(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"alice", "bob"} {
		if err := s.AddUser(id, 25, nil); err != nil {
			t.Fatalf("AddUser(%q) error = %v", id, err)
		}
	}
	if err := s.AddConnection("alice", "bob", "friend"); err != nil {
		t.Fatalf("AddConnection() error = %v", err)
	}
	// Same edge, both argument orders.
	if err := s.AddConnection("alice", "bob", "friend"); err != nil {
		t.Fatalf("AddConnection() re-add error = %v", err)
	}
	if err := s.AddConnection("bob", "alice", "friend"); err != nil {
		t.Fatalf("AddConnection() reversed re-add error = %v", err)
	}
	if s.ConnectionCount() != 1 {
		t.Errorf("ConnectionCount() = %d, want 1", s.ConnectionCount())
	}
	// A different type is a different edge.
	if err := s.AddConnection("alice", "bob", "follows"); err != nil {
		t.Fatalf("AddConnection() second type error = %v", err)
	}
	if s.ConnectionCount() != 2 {
		t.Errorf("ConnectionCount() = %d, want 2", s.ConnectionCount())
	}
}

func TestAddInteractionUnknownUser(t *testing.T) {
	s := NewStore()
	in := NewInteraction("ghost", "content-1", ActionView, time.Now())
	err := s.AddInteraction(*in)
	if !errors.Is(err, ErrUnknownUser) {
		t.Errorf("AddInteraction() error = %v, want ErrUnknownUser", err)
	}
}

func TestRemoveUserCascades(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"alice", "bob", "carol"} {
		if err := s.AddUser(id, 25, nil); err != nil {
			t.Fatalf("AddUser(%q) error = %v", id, err)
		}
	}
	if err := s.AddConnection("alice", "bob", "friend"); err != nil {
		t.Fatalf("AddConnection() error = %v", err)
	}
	if err := s.AddConnection("bob", "carol", "friend"); err != nil {
		t.Fatalf("AddConnection() error = %v", err)
	}
	if err := s.AddInteraction(*NewInteraction("bob", "content-1", ActionView, time.Now())); err != nil {
		t.Fatalf("AddInteraction() error = %v", err)
	}

	if err := s.RemoveUser("bob"); err != nil {
		t.Fatalf("RemoveUser() error = %v", err)
	}
	if s.HasUser("bob") {
		t.Error("HasUser(bob) = true after removal")
	}
	if s.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() = %d, want 0 after cascade", s.ConnectionCount())
	}
	if got := s.Neighbors("alice"); len(got) != 0 {
		t.Errorf("Neighbors(alice) = %v, want empty", got)
	}
	snap := s.Snapshot()
	if n := len(snap.Interactions("bob")); n != 0 {
		t.Errorf("snapshot interactions for removed user = %d, want 0", n)
	}
}

func TestAmendUser(t *testing.T) {
	s := NewStore()
	if err := s.AddUser("alice", 30, map[string]string{"name": "Alice"}); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if err := s.AmendUser("alice", map[string]string{"locale": "pt-BR"}); err != nil {
		t.Fatalf("AmendUser() error = %v", err)
	}
	u := s.User("alice")
	if u.Attrs["name"] != "Alice" || u.Attrs["locale"] != "pt-BR" {
		t.Errorf("Attrs = %v, want merged map", u.Attrs)
	}
	if err := s.AmendUser("ghost", nil); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("AmendUser(ghost) error = %v, want ErrUnknownUser", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewStore()
	if err := s.AddUser("alice", 30, nil); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	snap := s.Snapshot()

	// Writes after the snapshot must not leak into it.
	if err := s.AddUser("bob", 20, nil); err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if snap.UserCount() != 1 {
		t.Errorf("snapshot UserCount() = %d, want 1", snap.UserCount())
	}
	// Mutating the copy must not leak back into the store.
	snap.User("alice").Attrs["tampered"] = "yes"
	if _, ok := s.User("alice").Attrs["tampered"]; ok {
		t.Error("snapshot mutation leaked into store")
	}
}

func TestInteractionTargetAgeMax(t *testing.T) {
	in := NewInteraction("alice", "content-1", ActionView, time.Now())
	if _, ok := in.TargetAgeMax(); ok {
		t.Error("TargetAgeMax() declared on bare interaction, want undeclared")
	}
	in.WithTargetAgeMax(8)
	age, ok := in.TargetAgeMax()
	if !ok || age != 8 {
		t.Errorf("TargetAgeMax() = (%d, %v), want (8, true)", age, ok)
	}
	in.WithMeta(MetaTargetAgeMax, "not-a-number")
	if _, ok := in.TargetAgeMax(); ok {
		t.Error("TargetAgeMax() parsed malformed value, want undeclared")
	}
}
