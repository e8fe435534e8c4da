package mercadolivre

import "strings"

// TopicOrders is the only notification topic that carries order updates.
const TopicOrders = "orders"

// Notification is the webhook payload pushed by the marketplace.
type Notification struct {
	Topic    string `json:"topic"`
	Resource string `json:"resource"`
}

// IsOrder reports whether the notification refers to an order.
func (n Notification) IsOrder() bool {
	return n.Topic == TopicOrders
}

// OrderID extracts the order id from the resource path, e.g.
// "/orders/2000003508419013" yields "2000003508419013".
func (n Notification) OrderID() string {
	resource := strings.TrimRight(strings.TrimSpace(n.Resource), "/")
	if resource == "" {
		return ""
	}
	if idx := strings.LastIndex(resource, "/"); idx >= 0 {
		return resource[idx+1:]
	}
	return resource
}
