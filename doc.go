// Package riskgraph analyzes social interaction graphs for structural
// patterns associated with grooming and exploitation risk.
//
// The engine consumes a graph of users, connections, and content
// interactions, runs a set of independent signal extractors over an
// immutable snapshot, combines the signals into per-user risk
// assessments, ranks suspicious substructures, and assembles a report
// delivered through pluggable sinks.
//
// # Core Concepts
//
//   - Graph Store: mutable in-memory store of users, connections, and
//     interactions; analysis always runs on an immutable snapshot
//   - Signals: normalized [0,1] observations from independent extractors
//     (age-gap anomalies, content consumption, temporal patterns)
//   - Assessments: weighted composites of the signals per adult user,
//     mapped to risk tiers
//   - Structures: consumption clusters and critical users ranked by
//     investigative priority
//   - Report: the assembled run output, delivered to configured sinks
//
// # Getting Started
//
// Build a store, create an engine, and run an analysis:
//
//	store := graph.NewStore()
//	store.AddUser("u1", 45, nil)
//	store.AddUser("u2", 12, nil)
//	store.AddConnection("u1", "u2", "follows")
//
//	engine, err := riskgraph.New(
//		riskgraph.WithMetricsProvider(metrics.NewGonumProvider()),
//		riskgraph.WithSinks(&report.JSONExporter{Dir: "reports"}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rep, err := engine.Run(ctx, store)
//
// Thresholds and weights come from a Policy, loadable from YAML or an
// etcd source; see the policy package.
package riskgraph
