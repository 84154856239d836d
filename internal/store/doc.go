// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the negotiation rules to remain
// independent of specific database technologies or persistence details.
//
// Every store can be bound to a unit of work through Transactor. Writes
// made through the Stores handed to an InTx callback are committed together
// or not at all.
package store
