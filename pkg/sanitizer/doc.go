// Package sanitizer normalizes user supplied values before validation and storage.
//
// Every function is idempotent and never fails: input that cannot be
// normalized comes back empty so the validator rejects it.
package sanitizer
