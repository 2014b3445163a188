// Package schema holds the relational metadata of every entity type.
//
// A Specification names the table an entity type is stored in, the property
// holding its identifier and the relational properties that can be navigated
// from it. Specifications are built with Builder (or loaded from a YAML file)
// and registered once with an explicit Registry instance which repositories
// and queryables consult at run time.
package schema
