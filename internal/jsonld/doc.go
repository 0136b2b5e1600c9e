// Package jsonld extracts schema.org Event objects embedded in HTML pages as
// JSON-LD script blocks and maps them onto event records.
//
// Embedded data is untyped and inconsistently shaped between sites, so each
// object is decoded field by field into StructuredEvent: a value of the wrong
// JSON type is treated as absent instead of rejecting the whole object.
package jsonld
