package service

import (
	"sync"
	"time"
)

// Monitor 进程内运行指标，管理端 /api/stats 直接读取
type Monitor struct {
	mu sync.RWMutex

	// 结账统计
	CheckoutRequests int64
	CheckoutSuccess  int64
	StockConflicts   int64
	Cancellations    int64

	// 基础设施错误
	MQErrors    int64
	RedisErrors int64

	LastCheckoutTime time.Time
	LastMQError      time.Time
	LastRedisError   time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordCheckoutRequest 记录一次结账请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录一次成功下单
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordStockConflict 记录一次库存不足
func (m *Monitor) RecordStockConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StockConflicts++
}

// RecordCancel 记录一次订单取消
func (m *Monitor) RecordCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancellations++
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordRedisError 记录Redis错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

// Snapshot 导出当前指标
func (m *Monitor) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]interface{}{
		"checkout_requests": m.CheckoutRequests,
		"checkout_success":  m.CheckoutSuccess,
		"stock_conflicts":   m.StockConflicts,
		"cancellations":     m.Cancellations,
		"mq_errors":         m.MQErrors,
		"redis_errors":      m.RedisErrors,
	}
}
