// Package matcher splits queries into terms and locates term occurrences in text.
//
// Matching is case-insensitive by default and uses simple Unicode case
// folding one rune at a time, so reported offsets always point into the
// original text and always fall on rune boundaries. Folds that change the
// number of runes (German ß against "SS") are not matched.
//
//	terms := matcher.Tokenize("  alpha   beta ")        // ["alpha", "beta"]
//	offsets := matcher.FindOccurrences("a", "AaA", false) // [0, 1, 2]
package matcher
