// Package events defines the ledger events emitted on the event bus.
//
// Available event types:
//   - LoadBooked: a broker load was accepted onto a truck
//   - ScheduleRejected: the scheduling engine refused an entry
//   - FeeRecorded: a dispatch fee was created for a completed entry
//   - InvoiceGenerated: pending fees were billed on a new invoice
//   - InvoiceStatusChanged: an invoice moved to another status
//   - BookabilityChanged: a carrier's persisted bookable flag flipped
//   - CarrierVerified: an authority verification finished
package events
