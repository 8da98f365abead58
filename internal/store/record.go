// Package store holds the locally materialized prefix of a remotely paged
// record collection and issues the reads that grow it.
package store

import "sort"

// Record is an opaque structured value. The list components only hand it to
// templates and count it; they never inspect field values.
type Record map[string]any

// Schema lists the field names a record type declares.
type Schema struct {
	Fields []string
}

// Empty reports whether the schema declares no fields.
func (s Schema) Empty() bool {
	return len(s.Fields) == 0
}

// SchemaOf derives a schema from the keys of a sample record, sorted for
// stable output.
func SchemaOf(r Record) Schema {
	fields := make([]string, 0, len(r))
	for k := range r {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return Schema{Fields: fields}
}
