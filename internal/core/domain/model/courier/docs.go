// Package courier provides the Courier aggregate root.
//
// A courier is either offline or online; an online courier without an active order is
// available for dispatch. Dispatch commits a courier to exactly one order, and the
// courier is released again when that order is delivered or cancelled.
//
// Key business rules:
//   - Couriers must have a valid unique identifier and a name
//   - Couriers carry at most one order at a time
//   - Couriers cannot go offline mid-delivery
//   - Only the carrying courier may publish locations for an order
package courier
