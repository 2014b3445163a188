// Package domain defines the core types shared by every layer of relkv.
//
// The engine never reflects over user structs. Entities travel through the
// registry, index store and repository as Records: plain string-keyed maps
// whose relation properties hold nested Records (has-one) or slices of
// Records (has-many).
//
// # Identifiers
//
// ID is the canonical text form of an identifier. IDOf accepts strings and
// integral numbers, so the string "7" and the number 7 name the same row.
//
// # Accessor Tables
//
// Accessors[T] is a hand-written get/set table for one Go type. It converts a
// *T into a Record before a write and builds a *T back from a materialized
// Record after a read. Relation fields are declared with One and Many and
// delegate to the related type's table.
//
// # Errors
//
// Every failure the engine reports wraps one of the sentinel errors in this
// package; callers match them with errors.Is.
package domain
