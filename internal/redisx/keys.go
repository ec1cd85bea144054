package redisx

import "time"

const (
	// Cached stock count per product: stock:{product_id} -> int
	KeyProductStock = "stock:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStockCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
