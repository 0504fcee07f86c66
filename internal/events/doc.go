// Package events defines the Planloom mutation event taxonomy and the
// synchronous dispatcher that delivers events to audit and visualization
// collaborators.
//
// # Overview
//
// Every successful plan graph mutation raises exactly one event (plus one
// per cascaded edge removal). The payload shapes are a stability contract
// for downstream consumers:
//
//   - node.created(node)
//   - node.updated(node, changes)
//   - node.removed(nodeId)
//   - edge.created(edge)
//   - edge.removed(edgeId)
//   - status.changed(new, old)
//
// # Delivery Semantics
//
// Dispatch is synchronous and in-process. Handlers observe events strictly
// in the order the mutations were applied. A handler panic is recovered and
// logged; it never unwinds the mutation that raised the event, and it never
// prevents delivery to the remaining handlers.
//
// # Usage Example
//
//	dispatcher := events.NewDispatcher()
//	cancel := dispatcher.Subscribe(events.Filter{
//		Types: []events.EventType{events.EventNodeCreated},
//	}, func(e events.Event) {
//		log.Printf("node created in plan %s", e.PlanID)
//	})
//	defer cancel()
//
// The zero-dependency Recorder sink collects events for tests and audit
// trails.
package events
