// Package sanitizer normalizes caller input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result.
// Invalid input is returned in a normalized but still invalid form so that
// validation, not sanitization, reports the problem.
//
// Normalization includes:
//   - Customer names: trim and collapse inner whitespace, case preserved
//   - Categories: trim, collapse whitespace, lowercase ("Deluxe  Suite" becomes "deluxe suite")
//   - Room numbers: trim, drop inner whitespace, uppercase ("  12 b" becomes "12B")
//   - Prices: rounded to cents
package sanitizer
