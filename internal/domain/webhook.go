package domain

import "encoding/json"

// Topic is a Shopify webhook topic this app knows about
type Topic int

const (
	TopicUnknown Topic = iota
	TopicOrdersCreate
	TopicOrdersUpdated
	TopicCustomersCreate
	TopicAppUninstalled
	TopicCustomersDataRequest
	TopicCustomersRedact
	TopicShopRedact
)

var topicNames = map[Topic]string{
	TopicOrdersCreate:         "orders/create",
	TopicOrdersUpdated:        "orders/updated",
	TopicCustomersCreate:      "customers/create",
	TopicAppUninstalled:       "app/uninstalled",
	TopicCustomersDataRequest: "customers/data_request",
	TopicCustomersRedact:      "customers/redact",
	TopicShopRedact:           "shop/redact",
}

// ParseTopic maps the X-Shopify-Topic header value to a Topic.
// Unrecognised values yield TopicUnknown.
func ParseTopic(s string) Topic {
	for topic, name := range topicNames {
		if name == s {
			return topic
		}
	}
	return TopicUnknown
}

func (t Topic) String() string {
	if name, ok := topicNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsCompliance reports whether the topic is one of the mandatory privacy webhooks
func (t Topic) IsCompliance() bool {
	return t == TopicCustomersDataRequest || t == TopicCustomersRedact || t == TopicShopRedact
}

// RelayedWebhookTopics are the topics forwarded to Gooscale
var RelayedWebhookTopics = []Topic{
	TopicOrdersCreate,
	TopicOrdersUpdated,
	TopicCustomersCreate,
}

// SubscribedWebhookTopics are registered for every shop after install.
// app/uninstalled is not relayed; it clears the shop's sessions.
var SubscribedWebhookTopics = append(append([]Topic{}, RelayedWebhookTopics...), TopicAppUninstalled)

// WebhookEvent represents a verified webhook delivery
type WebhookEvent struct {
	Topic     Topic
	RawTopic  string
	Shop      string
	WebhookID string
	Payload   json.RawMessage
}

// OrderEventType tells Gooscale whether an order was created or updated
type OrderEventType string

const (
	OrderEventCreate OrderEventType = "create"
	OrderEventUpdate OrderEventType = "update"
)
