// Package query compiles typed predicates into RediSearch queries and
// decodes FT.SEARCH replies.
//
// # Grammar
//
// Each predicate compiles according to the declared type of its field:
//
//	TAG      =   @status:{active}
//	TAG      in  @status: active | pending
//	NUMERIC  =   @age:[30 30]
//	NUMERIC  in  (@age:[1 1] | @age:[2 2])
//	NUMERIC  >   @age:[(30 +inf]
//	NUMERIC  <   @age:[-inf 18]
//	TEXT     =   @title: hello
//
// Any other pairing compiles to nothing and the predicate is dropped.
// Predicates with a nil or empty value are dropped too, so optional filters
// can be passed unconditionally. Fragments are joined with a space, which the
// backend reads as AND.
//
// # Usage
//
//	q := query.New("shop-product-idx", productSchema, exec)
//	docs, err := q.Where("status", query.Eq, "active").
//		Where("price", query.Lt, 100).
//		SortBy("price", query.Asc).
//		All(ctx)
//
// # State
//
// A [Query] is single-use per terminal call: First, All, Count and Paginate
// clear the predicates, sort, limit and skip when they return, whatever
// the outcome. A Query is not safe for concurrent use.
package query
