package order

// Status 订单生命周期状态
type Status string

const (
	StatusPending   Status = "pending"   // 初始状态
	StatusPaid      Status = "paid"      // 管理端手工标记已支付
	StatusShipped   Status = "shipped"   // 已发货
	StatusDelivered Status = "delivered" // 终态
	StatusCancelled Status = "cancelled" // 终态，回补库存
)

// allowedNext 状态机转移表：当前状态 -> 允许的下一状态集合
var allowedNext = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid 是否为合法状态值
func (s Status) Valid() bool {
	_, ok := allowedNext[s]
	return ok
}

// CanTransitionTo 当前状态能否转移到 target
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedNext[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Statuses 全部合法状态，按生命周期顺序排列
func Statuses() []Status {
	return []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}
}
