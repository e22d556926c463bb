// Package order implements the Order aggregate and its lifecycle state machine.
//
// An order is created in Placed by checkout and then moves through
// Accepted, PickedUp and Delivered, or ends early in Cancelled or PaymentFailed.
// Every accepted move appends a HistoryEntry and records a StatusChangedEvent which the
// application layer publishes after the move is persisted.
//
// Key business rules:
//   - Each target status has a fixed set of roles allowed to request it
//   - Only the order's own customer, restaurant or assigned courier may move it
//   - Prepaid orders are accepted only after the payment is confirmed
//   - An order cannot be picked up without an assigned courier
//   - Cancellation is impossible once the food is picked up
//
// Items and fare are frozen at creation; a cart change after checkout never affects an order.
package order
