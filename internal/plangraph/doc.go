// Package plangraph implements the content plan graph engine.
//
// A Plan is an aggregate that exclusively owns a set of typed nodes
// (content, campaign, series, milestone) and the edges between them
// (depends_on, repurposes, follows, part_of). The engine enforces the
// invariants of the aggregate:
//
//   - The subgraph induced by depends_on edges is acyclic at all times.
//   - A content node's scheduled time must fall inside the plan's
//     [StartDate, EndDate] window when it is inserted or rescheduled.
//   - Node versions start at 1 and increment by exactly one per accepted
//     update; the plan version increments only on accepted status
//     transitions.
//   - Removing a node removes exactly the edges incident to it, so no
//     dangling edge can survive a mutation.
//
// On top of the store the engine provides dependency traversal
// (Dependencies, Dependents, TopologicalSort, ReadyNodes), the plan
// approval lifecycle (Submit, Approve, Reject, StartExecution, Complete,
// Cancel, ReturnToDraft), recurring series expansion into concrete
// content nodes, milestone approval gates, and snapshot export/import.
//
// Every successful mutation publishes an event through the configured
// events.Sink, strictly after the mutation is applied and in mutation
// order. See the payload types in events.go for the shapes.
//
// # Concurrency
//
// A Plan has no internal locking. Callers must serialize all mutating
// calls to one Plan instance; read-only calls may run concurrently with
// each other but not with a mutation. All operations are synchronous and
// bounded O(V+E), so a single mutex or a single-writer queue around the
// aggregate is sufficient.
package plangraph
