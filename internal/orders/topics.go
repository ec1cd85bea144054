package orders

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderPaid      = "order.paid"
	TopicOrderDelivered = "order.delivered"
	TopicStockChanged   = "product.stock.changed"
)

// Partition key = order_id so all events for one order stay ordered.
// Stock events key on product_id instead.
func PartitionKey(id string) []byte { return []byte(id) }
