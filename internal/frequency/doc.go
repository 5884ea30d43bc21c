// Package frequency provides insertion-ordered occurrence counters.
//
// A Table behaves like a multiset that remembers the order in which keys
// were first seen. Ranked queries (MostCommon) sort by descending count and
// fall back to that first-seen order, so two runs over the same input always
// produce the same ranking.
package frequency
