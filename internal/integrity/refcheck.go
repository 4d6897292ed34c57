package integrity

import (
	"context"
	"fmt"
	"strings"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

// Kind 实体类型标识（层级：state -> city -> location -> car -> reservation，
// user 为横向关联）。
type Kind string

const (
	KindState       Kind = "state"
	KindCity        Kind = "city"
	KindLocation    Kind = "location"
	KindCar         Kind = "car"
	KindReservation Kind = "reservation"
	KindUser        Kind = "user"
)

// ExistsFunc 判断某类型的记录是否存在。
// 约定：目标类型支持软删除时，已软删除的记录视为不存在。
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// Checker 外键引用校验器：写入提交前显式调用，
// 不在字段级 schema 校验里夹带存在性检查。
type Checker struct {
	probes map[Kind]ExistsFunc
}

func NewChecker() *Checker {
	return &Checker{probes: make(map[Kind]ExistsFunc)}
}

// Register 注册某个实体类型的存在性探测。
func (c *Checker) Register(kind Kind, probe ExistsFunc) {
	if c == nil || probe == nil {
		return
	}
	c.probes[kind] = probe
}

// ValidateReference 校验 field 字段的外键值 id 是否指向存活记录。
// 不存在时返回 *errs.ReferenceError；校验成功无副作用。
func (c *Checker) ValidateReference(ctx context.Context, field string, kind Kind, id string) error {
	if c == nil {
		return fmt.Errorf("checker is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return &errs.ValidationError{Field: field, Reason: "required"}
	}
	probe, ok := c.probes[kind]
	if !ok {
		return fmt.Errorf("no existence probe registered for kind %q", kind)
	}
	exists, err := probe(ctx, id)
	if err != nil {
		return fmt.Errorf("check %s reference: %w", kind, err)
	}
	if !exists {
		return &errs.ReferenceError{Field: field, Kind: string(kind), ID: id}
	}
	return nil
}
