// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the stores
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. SwapService: the swap negotiation engine (propose, respond) and the
// read-only query surface over slots and requests.
//
// 2. SlotService: owner management of slots, including opting a slot into
// swapping.
//
// 3. UserService: registration and login.
//
// Every mutating operation runs as a single unit of work through
// store.Transactor and re-reads current state; nothing is cached between
// calls. Precondition failures are reported with the sentinel errors in
// errors.go, wrapped in *SwapServiceError, before anything is written.
package service
