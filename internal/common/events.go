package common

import (
	"context"
	"encoding/json"
)

const (
	UserExchange     Exchange   = "user_exchange"
	UserCreatedQueue Queue      = "user_created_queue"
	UserCreatedKey   BindingKey = "user.created"
)

// UserCreatedEvent is the body published on UserCreatedKey after an account is stored.
type UserCreatedEvent struct {
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Fullname   string `json:"fullname"`
	Username   string `json:"username"`
	GoogleAuth bool   `json:"google_auth"`
}

// SetupUserExchange declares the durable user exchange and binds the user.created queue to it.
func SetupUserExchange(mb *MessageBroker) error {
	return mb.declareBinding(UserExchange, UserCreatedQueue, UserCreatedKey)
}

// PublishJSON marshals v and publishes it through p.
func PublishJSON(ctx context.Context, p MessageProducer, v any, key BindingKey, exchange Exchange) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return p.Publish(ctx, body, key, exchange)
}
