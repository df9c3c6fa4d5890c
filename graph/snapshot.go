package graph

// Snapshot is a frozen, read-only copy of the graph taken at the start of
// an assessment run. All iteration orders are deterministic: users and
// neighbors sort lexicographically, connections sort by (A, B, Type), and
// interactions keep their insertion order.
type Snapshot struct {
	users        map[string]*User
	userIDs      []string
	connections  []*Connection
	interactions map[string][]*Interaction
	adjacency    map[string][]string
}

// UserIDs returns all user IDs in lexicographic order.
func (s *Snapshot) UserIDs() []string {
	return s.userIDs
}

// User returns the user with the given ID, or nil if absent.
func (s *Snapshot) User(id string) *User {
	return s.users[id]
}

// UserCount returns the number of users in the snapshot.
func (s *Snapshot) UserCount() int {
	return len(s.userIDs)
}

// Connections returns all edges ordered by (A, B, Type).
func (s *Snapshot) Connections() []*Connection {
	return s.connections
}

// ConnectionCount returns the number of distinct edges.
func (s *Snapshot) ConnectionCount() int {
	return len(s.connections)
}

// Interactions returns the given user's interactions in insertion order.
func (s *Snapshot) Interactions(userID string) []*Interaction {
	return s.interactions[userID]
}

// InteractionCount returns the total number of interactions across all
// users.
func (s *Snapshot) InteractionCount() int {
	n := 0
	for _, list := range s.interactions {
		n += len(list)
	}
	return n
}

// Neighbors returns the sorted neighbor IDs of the given user.
func (s *Snapshot) Neighbors(id string) []string {
	return s.adjacency[id]
}

// Degree returns the number of neighbors of the given user.
func (s *Snapshot) Degree(id string) int {
	return len(s.adjacency[id])
}
