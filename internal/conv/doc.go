// Package conv holds checked integer conversions for sizes that cross
// between Go ints and the fixed-width counters of the allocator.
//
// A failed conversion returns an error instead of wrapping around, so a
// bogus size surfaces as an error rather than as a wrong stat.
package conv
