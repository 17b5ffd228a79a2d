// Package record stores typed records as RedisJSON documents and queries
// them through their search index.
//
// A [Model] declares a record type: its name, key prefix, field schema,
// defaults and whether it keeps created_at/updated_at. A [Repository]
// binds a Model to a backend.Executor:
//
//	repo := record.NewRepository(product, exec)
//	p, err := repo.Create(ctx, map[string]any{"title": "Lamp", "price": 30})
//	// INCR total_products
//	// JSON.SET shop:product:1 $ {"created_at":...,"id":1,"price":30,"title":"Lamp",...}
//
//	cheap, err := repo.All(ctx, repo.Query().Where("price", query.Lt, 50))
package record
