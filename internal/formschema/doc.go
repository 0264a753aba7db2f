// Package formschema defines the canonical shape of form fields and form
// settings and the pure functions that coerce raw, possibly legacy records
// into that shape.
//
// Raw records are the generic values produced by encoding/json (maps,
// []any, float64, string, bool, nil). Normalization never fails: malformed
// attributes are replaced by defaults, and attributes it does not know about
// are carried through untouched. Each normalizer also reports whether the
// canonical record differs from its input, which the store uses to decide
// whether a repaired snapshot must be written back.
package formschema
