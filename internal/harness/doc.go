// Package harness runs query conformance scenarios against the document
// engine.
//
// A scenario pairs a log with a sequence of queries and the outcome each one
// should have. Every scenario runs on a fresh engine with a fixed query id,
// so its snapshot is byte-identical across runs and can be pinned in a golden
// file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: people_by_age
//	description: "Live people under thirty, youngest first"
//	log: |
//	  E{"name":"Ann","age":30}
//	  X{"name":"Bob","age":25}
//	  E{"name":"Cid","age":25}
//	text_fields: [bio]
//	operand_mode: present
//	queries:
//	  - name: under_thirty
//	    filter: { age: { $lt: 30 } }
//	    sort: { age: 1, name: -1 }
//	    project: { name: 1 }
//	    expect:
//	      records:
//	        - { name: Cid }
//	  - name: count_all
//	    count: true
//	    expect:
//	      count: 2
//
// A log may instead be read from log_file, resolved relative to the scenario
// file. Sort and project mappings are order-sensitive. An expect clause may
// name an error code (IO_FAILURE, DECODE_FAILURE or INVALID_FILTER) instead
// of records or a count, plus the line of a decode failure.
//
// # Golden Files
//
// RunWithGolden compares a scenario's snapshot against
// testdata/golden/<name>.golden. Run tests with -update to regenerate.
package harness
