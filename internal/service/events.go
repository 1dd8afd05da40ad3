package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/goshop/internal/datamodels/order"
)

// 订单事件类型
const (
	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"

	// OrderEventsQueue 订单事件队列名，order-worker 从这里消费
	OrderEventsQueue = "order_events"
)

// OrderEvent 发到 MQ 的订单事件载荷
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewOrderEvent 从订单构造事件
func NewOrderEvent(eventType string, o *order.Order) *OrderEvent {
	return &OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Total:      o.Total.StringFixed(2),
		OccurredAt: time.Now(),
	}
}

// EventPublisher 订单事件发布接口
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt *OrderEvent) error
}

type mqPublisher struct {
	conn *amqp.Connection
}

// NewMQEventPublisher 基于 RabbitMQ 的事件发布器
func NewMQEventPublisher(conn *amqp.Connection) EventPublisher {
	return &mqPublisher{conn: conn}
}

func (p *mqPublisher) PublishOrderEvent(ctx context.Context, evt *OrderEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", OrderEventsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
