// Package errs provides the error taxonomy of the food-delivery core.
//
// Every error type follows the same pattern:
//   - a sentinel error variable (e.g., ErrValueIsRequired)
//   - a struct type carrying the details
//   - constructors with and without cause
//   - Error() for the human-readable message
//   - Unwrap() returning the sentinel so errors.Is works
//
// Generic validation errors (required, invalid, out of range, not found) live in errors.go,
// order-lifecycle and pricing errors in domain.go. KindOf maps any error onto a stable
// machine-readable Kind which transports send to clients next to the message.
package errs
