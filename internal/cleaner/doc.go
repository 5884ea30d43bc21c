// Package cleaner removes unwanted words from an exported frequency CSV.
//
// A denylist is a plain text file with one word per line. Filter copies the
// rows of a frequency CSV whose word is not on the denylist, keeping their
// order, and reports every removed row so the caller can show what was dropped.
package cleaner
