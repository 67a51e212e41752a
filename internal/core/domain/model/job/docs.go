// Package job contains the DeliveryJob aggregate: the assignment record that
// binds one order to one drone for a single delivery attempt. A job starts
// Pending when dispatch picks a drone, turns Active when the mission intent is
// accepted by the mission platform, and ends Completed or Failed. Reassigning
// an order creates a new job rather than mutating the old one, so the history
// of attempts is preserved.
package job
