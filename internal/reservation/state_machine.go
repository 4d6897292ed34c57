package reservation

import (
	"time"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

// AllowTransition 定义预订状态机的允许流转关系（有向图配置）。
// 只允许管理侧驱动的前向流转，终态不再流转。
var AllowTransition = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	// 终态：不允许从 completed / cancelled 再流转
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
// 非终态允许原地重放（幂等），终态连自身也拒绝。
func CanTransition(from, to Status) bool {
	if from == to {
		return len(AllowTransition[from]) > 0
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对预订应用状态变更，并维护关键时间字段。
// 非法流转返回 *errs.StateTransitionError。
func ApplyTransition(r *Reservation, to Status, now time.Time) error {
	if r == nil {
		return &errs.NotFoundError{Kind: "reservation"}
	}
	from := r.Status
	if !CanTransition(from, to) {
		return &errs.StateTransitionError{From: string(from), To: string(to)}
	}

	r.Status = to

	switch to {
	case StatusConfirmed:
		if r.ConfirmedAt == nil {
			t := now
			r.ConfirmedAt = &t
		}
	case StatusCompleted:
		if r.CompletedAt == nil {
			t := now
			r.CompletedAt = &t
		}
	case StatusCancelled:
		if r.CancelledAt == nil {
			t := now
			r.CancelledAt = &t
		}
	}
	return nil
}
