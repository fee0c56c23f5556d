// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - OrderArrivedEvent: a new order entered the pending pool
//   - OrderExpiredEvent: an order passed its deadline undispatched
//   - VehicleDispatchedEvent: a route was committed to a vehicle
//   - DeliveryCompletedEvent: a vehicle finished its delivery leg
//   - TickEvent: one scheduling cycle completed
package events
