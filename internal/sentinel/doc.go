// Package sentinel defines the const-string error type used for every
// sentinel error in this module (ErrSpawn, ErrAlreadyStarted, and the rest).
//
// A sentinel declared with errors.New is a package var that callers could
// in principle reassign; sentinel.Error is a string type, so the same
// declaration can be a const. It stays compatible with errors.Is across
// wrapped chains because the type is comparable.
package sentinel
