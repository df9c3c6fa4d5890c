package graph

import (
	"fmt"
	"time"
)

// Connection represents an unordered, typed edge between two users.
// Endpoints are stored in canonical order (A < B) so the same pair always
// produces the same Connection regardless of argument order.
type Connection struct {
	// A and B are the endpoint user IDs, with A < B lexicographically.
	A string `json:"a"`
	B string `json:"b"`

	// Type is a free-form edge tag (e.g., "friend", "follows").
	Type string `json:"type"`

	// Weight is an optional edge weight. Defaults to 1.
	Weight float64 `json:"weight"`

	// Timestamp records when the connection was created, if known.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// NewConnection creates a Connection between a and b with the given type,
// normalizing the endpoints into canonical order.
func NewConnection(a, b, connType string) *Connection {
	if b < a {
		a, b = b, a
	}
	return &Connection{A: a, B: b, Type: connType, Weight: 1}
}

// WithWeight sets the edge weight and returns the connection for chaining.
func (c *Connection) WithWeight(w float64) *Connection {
	c.Weight = w
	return c
}

// WithTimestamp sets the creation time and returns the connection for chaining.
func (c *Connection) WithTimestamp(ts time.Time) *Connection {
	c.Timestamp = ts
	return c
}

// Other returns the endpoint opposite to the given user ID, or "" if the
// ID is not an endpoint of this connection.
func (c *Connection) Other(id string) string {
	switch id {
	case c.A:
		return c.B
	case c.B:
		return c.A
	default:
		return ""
	}
}

// Key returns the canonical identity of this connection. Two connections
// with the same endpoints and type are the same edge; re-adding one is a
// no-op.
func (c *Connection) Key() EdgeKey {
	return EdgeKey{A: c.A, B: c.B, Type: c.Type}
}

// Validate checks that both endpoints and the type are populated and the
// endpoints are distinct.
func (c *Connection) Validate() error {
	if c.A == "" || c.B == "" {
		return fmt.Errorf("connection endpoints cannot be empty")
	}
	if c.A == c.B {
		return fmt.Errorf("connection endpoints must be distinct")
	}
	if c.Type == "" {
		return fmt.Errorf("connection type cannot be empty")
	}
	return nil
}

// EdgeKey is the canonical identity of an edge: ordered endpoint pair plus
// type tag.
type EdgeKey struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Type string `json:"type,omitempty"`
}

// MakeEdgeKey builds an EdgeKey with the endpoints in canonical order.
func MakeEdgeKey(a, b, connType string) EdgeKey {
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b, Type: connType}
}

// Pair returns the undirected endpoint pair without the type tag, used
// when matching against bridge sets that identify edges by endpoints only.
func (k EdgeKey) Pair() EdgeKey {
	return EdgeKey{A: k.A, B: k.B}
}

// String returns a stable textual form of the key.
func (k EdgeKey) String() string {
	if k.Type == "" {
		return k.A + "--" + k.B
	}
	return k.A + "--" + k.B + ":" + k.Type
}
