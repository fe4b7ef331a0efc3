// Package values provides the typed field map exchanged with the record
// store: inserts and updates take a Values, and query results come back as
// one Values per row.
//
// A Value is one of Null, String, Int, Float or Bool. The set is closed;
// only this package implements Value. Null is a real value, distinct from
// an absent key: {"quanity": Null{}} sets a column to NULL, while a map
// without the key leaves it untouched on update.
//
// Conversions follow the loose typing of SQLite columns. AsInt accepts a
// decimal string ("5") as well as an Int, and AsString renders numbers in
// decimal, so callers that collect form input as text still validate the
// way the store will see the data.
//
// Canonical JSON (MarshalCanonical) sorts object keys by UTF-16 code units
// and NFC-normalizes strings so snapshots are byte-stable.
package values
