// Package harness runs filterview scenarios.
//
// A scenario is a YAML document naming a source collection of records, a
// sequence of steps against the source and a filtered view over it, and
// assertions over the outcome:
//
//	name: prefix_filter
//	fields: [name]
//	source:
//	  - {name: ant}
//	  - {name: bee}
//	steps:
//	  - op: apply_filter
//	    field: name
//	    value: a
//	  - op: source_append
//	    item: {name: asp}
//	assertions:
//	  - type: view_equals
//	    field: name
//	    values: [ant, asp]
//
// Documents are checked against the CUE schema of package compiler and
// then decoded strictly: unknown fields are errors.
//
// A recorder is attached to the source before the view exists, so in the
// trace every source notification precedes the view notifications it
// causes. The rendered trace and final view are compared against golden
// files with goldie.
package harness
