package graph

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is the mutable social graph: users, connections, and content
// interactions, with uniqueness and referential-integrity checks on every
// write. All methods are safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*User
	edges        map[EdgeKey]*Connection
	adjacency    map[string]map[string]struct{}
	interactions map[string][]*Interaction // by user ID, in insertion order
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*User),
		edges:        make(map[EdgeKey]*Connection),
		adjacency:    make(map[string]map[string]struct{}),
		interactions: make(map[string][]*Interaction),
	}
}

// AddUser registers a user. Pass AgeUnknown when the age is not known.
// Returns ErrDuplicateEntity if the ID is already registered.
func (s *Store) AddUser(id string, age int, attrs map[string]string) error {
	u := &User{ID: id, Age: age, Attrs: attrs}
	if err := u.Validate(); err != nil {
		return fmt.Errorf("add user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; exists {
		return fmt.Errorf("add user %q: %w", id, ErrDuplicateEntity)
	}
	if u.Attrs == nil {
		u.Attrs = make(map[string]string)
	}
	s.users[id] = u
	s.adjacency[id] = make(map[string]struct{})
	return nil
}

// AmendUser merges the given attributes into an existing user's profile.
// Returns ErrUnknownUser if the ID is not registered.
func (s *Store) AmendUser(id string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("amend user %q: %w", id, ErrUnknownUser)
	}
	for k, v := range attrs {
		u.Attrs[k] = v
	}
	return nil
}

// RemoveUser deletes a user and cascades to every incident connection and
// every interaction the user made. Returns ErrUnknownUser if the ID is not
// registered.
func (s *Store) RemoveUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("remove user %q: %w", id, ErrUnknownUser)
	}

	for key := range s.edges {
		if key.A == id || key.B == id {
			delete(s.edges, key)
		}
	}
	for other := range s.adjacency[id] {
		delete(s.adjacency[other], id)
	}
	delete(s.adjacency, id)
	delete(s.interactions, id)
	delete(s.users, id)
	return nil
}

// AddConnection records an undirected, typed edge between two registered
// users. Re-adding an edge with the same endpoints and type is a no-op.
// Returns ErrUnknownUser if either endpoint is missing.
func (s *Store) AddConnection(a, b, connType string, opts ...ConnectionOption) error {
	c := NewConnection(a, b, connType)
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("add connection: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.A]; !ok {
		return fmt.Errorf("add connection %s--%s: %q: %w", a, b, c.A, ErrUnknownUser)
	}
	if _, ok := s.users[c.B]; !ok {
		return fmt.Errorf("add connection %s--%s: %q: %w", a, b, c.B, ErrUnknownUser)
	}

	key := c.Key()
	if _, exists := s.edges[key]; exists {
		return nil // idempotent
	}
	s.edges[key] = c
	s.adjacency[c.A][c.B] = struct{}{}
	s.adjacency[c.B][c.A] = struct{}{}
	return nil
}

// ConnectionOption configures an added connection.
type ConnectionOption func(*Connection)

// WithEdgeWeight sets the connection weight.
func WithEdgeWeight(w float64) ConnectionOption {
	return func(c *Connection) { c.Weight = w }
}

// WithEdgeTimestamp sets the connection creation time.
func WithEdgeTimestamp(ts time.Time) ConnectionOption {
	return func(c *Connection) { c.Timestamp = ts }
}

// AddInteraction records a content interaction for a registered user.
// Content IDs need no prior registration. Returns ErrUnknownUser if the
// acting user is missing.
func (s *Store) AddInteraction(in Interaction) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("add interaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[in.UserID]; !ok {
		return fmt.Errorf("add interaction for %q: %w", in.UserID, ErrUnknownUser)
	}
	copied := in
	if copied.Meta == nil {
		copied.Meta = make(map[string]string)
	}
	s.interactions[in.UserID] = append(s.interactions[in.UserID], &copied)
	return nil
}

// HasUser reports whether the user ID is registered.
func (s *Store) HasUser(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// User returns a copy of the user with the given ID, or nil if absent.
func (s *Store) User(id string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return cloneUser(u)
}

// UserCount returns the number of registered users.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// ConnectionCount returns the number of distinct edges.
func (s *Store) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Neighbors returns the IDs of all users connected to the given user,
// sorted for deterministic iteration.
func (s *Store) Neighbors(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adj, ok := s.adjacency[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(adj))
	for other := range adj {
		out = append(out, other)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a frozen, deterministic copy of the whole graph.
// Assessment runs read the snapshot only, so concurrent writes to the
// store cannot affect an in-progress run.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		users:        make(map[string]*User, len(s.users)),
		interactions: make(map[string][]*Interaction, len(s.interactions)),
		adjacency:    make(map[string][]string, len(s.adjacency)),
	}

	userIDs := make([]string, 0, len(s.users))
	for id, u := range s.users {
		snap.users[id] = cloneUser(u)
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	snap.userIDs = userIDs

	snap.connections = make([]*Connection, 0, len(s.edges))
	for _, c := range s.edges {
		copied := *c
		snap.connections = append(snap.connections, &copied)
	}
	sort.Slice(snap.connections, func(i, j int) bool {
		a, b := snap.connections[i], snap.connections[j]
		if a.A != b.A {
			return a.A < b.A
		}
		if a.B != b.B {
			return a.B < b.B
		}
		return a.Type < b.Type
	})

	for id, list := range s.interactions {
		copied := make([]*Interaction, len(list))
		for i, in := range list {
			dup := *in
			copied[i] = &dup
		}
		snap.interactions[id] = copied
	}

	for id, adj := range s.adjacency {
		out := make([]string, 0, len(adj))
		for other := range adj {
			out = append(out, other)
		}
		sort.Strings(out)
		snap.adjacency[id] = out
	}

	return snap
}

func cloneUser(u *User) *User {
	attrs := make(map[string]string, len(u.Attrs))
	for k, v := range u.Attrs {
		attrs[k] = v
	}
	return &User{ID: u.ID, Age: u.Age, Attrs: attrs}
}
