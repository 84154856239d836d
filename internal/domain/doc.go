// Package domain contains the core business entities of the slot exchange:
// slots, swap requests and the users who own them. It also holds the slot
// status state machine, which is the only place legal transitions are listed.
// The package has no knowledge of storage or transport.
package domain
