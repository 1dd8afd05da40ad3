package main

import (
	"encoding/json"

	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/service"
)

// 订单事件统计 key 前缀，后面拼事件类型，如 orders:stats:order.placed
const statsKeyPrefix = "orders:stats:"

func main() {
	logger.Init()

	cfg, err := config.Load("./config")
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}

	mqConn := mq.Init(&cfg.RabbitMQ)
	redisClient := redis.Init(&cfg.Redis)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false），处理失败时消息可重新入队
	msgs, err := ch.Consume(service.OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("order worker started, waiting for events")

	for d := range msgs {
		handleDelivery(redisClient, d)
	}
}

func handleDelivery(redisClient radix.Client, d amqp.Delivery) {
	var evt service.OrderEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		zap.L().Warn("invalid event message", zap.Error(err))
		// 消息格式错误，拒绝并丢弃
		_ = d.Nack(false, false)
		return
	}

	// 按事件类型累计计数，供管理端 /stats 查询
	if err := redisClient.Do(radix.Cmd(nil, "INCR", statsKeyPrefix+evt.Type)); err != nil {
		zap.L().Error("failed to record order stats", zap.Error(err))
		// Redis 暂时不可用，重新入队稍后重试
		_ = d.Nack(false, true)
		return
	}

	zap.L().Info("order event processed",
		zap.String("type", evt.Type),
		zap.Int64("order_id", evt.OrderID),
		zap.Int64("user_id", evt.UserID),
		zap.String("total", evt.Total),
		zap.Time("occurred_at", evt.OccurredAt),
	)

	if err := d.Ack(false); err != nil {
		zap.L().Warn("failed to ack message", zap.Error(err))
	}
}
