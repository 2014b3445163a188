// Package index stores rows and maintains the derived indexes over a kv.Backend.
//
// Three kinds of keys are written:
//
//	<table>:<id>                                   row (JSON object)
//	::index-of::<table>::identifiers::              primary index (JSON array)
//	::index-of::<owning>::which-has-one::<referenced>::as::<property>::with-identifier::<value>::
//	                                                foreign-key index (JSON array)
//
// Every token is escaped (backslash and colon) before it is joined, so no two
// distinct rows or indexes share a key. Index updates are read-modify-write
// round-trips without locking; one logical writer per table is assumed.
package index
