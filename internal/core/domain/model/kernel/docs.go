// Package kernel provides the shared domain primitives of the food-delivery core:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - GeoPoint and LocationSample: WGS84 coordinates with haversine distance, and the
//     latest courier GPS fix
//   - Role and Actor: the verified identity a request or subscription acts as
//   - DomainEvent: what aggregates record and the unit of work publishes after commit
package kernel
