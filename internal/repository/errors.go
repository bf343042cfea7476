// Package repository defines the persistence interfaces for the booking
// engine plus the sentinel errors shared by their implementations.
// Sentinels let the service layer distinguish failure scenarios without
// depending on driver details: ErrNotFound maps to a missing row,
// ErrConflict to a conditional write whose precondition did not hold
// (concurrent mutation or stale client state).
package repository

import "errors"

// ErrNotFound is returned when a referenced booking, payment, property
// or user row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a guarded update affects zero rows. The
// caller's view of the record was stale; nothing was written.
var ErrConflict = errors.New("conflict")
