// Package graph provides the in-memory social graph store that the
// riskgraph engine reads: users, their connections, and their content
// interactions.
//
// The store enforces uniqueness and referential integrity only; it carries
// no scoring logic. Assessment runs operate on an immutable Snapshot taken
// from the store, so writes arriving during a run never affect results
// already being computed.
//
// # Core Types
//
//   - User: a registered account with an optional age and opaque attributes
//   - Connection: an unordered, typed edge between two users
//   - Interaction: a user's action on a content item, with metadata that
//     may declare the content's intended-audience age ceiling
//   - Snapshot: a frozen, read-only copy of the whole graph
//
// All Store methods are safe for concurrent use.
package graph
