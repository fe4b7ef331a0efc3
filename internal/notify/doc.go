// Package notify is an in-process change-notification bus keyed by address.
//
// A mutation publishes the address it changed with Bus.Notify. Each change is
// stamped with a sequence number from a monotonic logical clock and delivered
// synchronously, on the publishing goroutine, to every matching subscriber:
//
//   - subscribers registered at exactly the changed address
//   - subscribers registered at an ancestor with descendants enabled
//   - subscribers registered at a descendant of the changed address
//
// Delivery is fire-and-forget. Observers must not block; Bus.Watch adapts a
// subscription to a channel through an unbounded queue so a slow reader
// never stalls the publisher.
package notify
