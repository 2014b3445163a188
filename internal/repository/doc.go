// Package repository performs CRUD over registered entity types while keeping
// the primary and foreign-key indexes consistent, and materializes eager-load
// graphs with Queryable.
//
// # Writes
//
// Create, Update and CreateOrUpdate strip relational properties from the
// record and persist the remaining "pure" row. Nested has-one objects are
// upserted first and their identifier is stamped into the foreign-key
// property when it is unset. Nested has-many children are stamped with the
// owner's identifier and upserted after the owner. Every write is a sequence
// of independent key-value operations; a failure part way through leaves the
// store partially mutated.
//
// # Deletes
//
// Delete removes the row and its primary index entry, unlinks the row from
// the foreign-key indexes it appears in, and drops the foreign-key index
// records of its has-many relations. Children are detached, not deleted.
//
// # Reads
//
// Queryable builds an ordered inclusion map with Include and ThenInclude and
// resolves it against the index store with GetByID, GetByIDs and GetAll.
// Relations are derived from the indexes at read time, never from the
// objects that were written.
//
// # Typed Access
//
// Typed wraps a Repository with a Mapper (usually a domain.Accessors table)
// so callers work with their own structs instead of records.
package repository
