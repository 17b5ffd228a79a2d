// Package schema describes the typed fields of a record type and compiles
// them into search index definitions.
//
// A [Schema] is an ordered list of [Field] values. [BuildIndexDescriptor]
// derives the index name, key prefix and schema entries; [Recreate] drops
// the index if it exists and creates it again:
//
//	FT.DROPINDEX shop-product-idx
//	FT.CREATE shop-product-idx ON JSON PREFIX 1 shop:product: SCHEMA $.title as title TEXT
//
// Recreation is not transactional. A failure between drop and create leaves
// no index; running it again is safe.
package schema
