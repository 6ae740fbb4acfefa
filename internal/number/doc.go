// Package number converts between text and bigint.Int.
//
// Parsing runs in two stages. Scan validates the text against a Style and an
// Info and collects the significant digits into a Buffer together with the
// decimal scale and the sign. A decoder then turns the Buffer into limbs:
//
//   - HexToInt reads the digits as a two's-complement value, eight digits
//     per limb.
//   - DecimalToInt folds nine digits at a time into a running product for
//     short inputs and merges base 10^9 blocks pairwise for long ones. The
//     crossover is the converter's naive threshold.
//
// Formatting supports the standard integer formats D, R, G, X, N, F and E.
//
// A Converter carries the tunables (thresholds, multiplication kernel,
// multiplier cache, logger and observer). The package-level functions use a
// shared converter with DefaultOptions.
package number
