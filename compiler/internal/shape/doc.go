// Package shape classifies Go types into the three structural shapes a
// plan can expand: maps, sequences and records.
//
// Classification is pure and depends only on the reflect.Type. Converter
// lookup happens before classification, so scalar types normally never
// reach this package; Classify reports them as Unsupported.
package shape
