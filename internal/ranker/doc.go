// Package ranker orders highlighted records and groups them by category.
//
//	ranked := ranker.Rank(records)   // title density first, then content density
//	groups := ranker.Group(ranked)   // largest category first
//	groups, n := ranker.Trim(groups, 25)
//
// All functions are pure and stable: equal records keep their input order.
package ranker
