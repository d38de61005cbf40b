package market

const (
	TopicOrderPlaced    = "market.order.placed"
	TopicOrderCompleted = "market.order.completed"
	TopicOrderCancelled = "market.order.cancelled"
	TopicOrderDeleted   = "market.order.deleted"
)

// Partition key = order_id so every event of one order keeps its ordering.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
