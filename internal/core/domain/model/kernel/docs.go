// Package kernel provides the core domain primitives shared by the delivery
// domain model.
//
// The package includes:
//   - UUID: identifier value object with validation and comparison
//   - GeoPoint: validated WGS84 coordinate pair with haversine distance
//   - BoundingBox: axis-aligned service area used by dispatch eligibility
//   - tracking identifier generation for the public tracking surface
//
// All primitives are immutable value objects. Zero values are invalid and
// are rejected by Validate, which keeps aggregates reconstructed from
// persistence honest about their invariants.
package kernel
