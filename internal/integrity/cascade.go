package integrity

import (
	"context"
	"fmt"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

// Level 级联层级：ChildIDs 按父级 id 集合批量解析本层记录 id，
// Delete 按 id 集合批量删除本层记录。
// 两个操作都必须包含软删除的记录（硬删除对软删除标记不设限）。
type Level struct {
	Kind Kind

	// ChildIDs 解析父级 id 集合在本层的全部子记录 id。
	// 根层级不会被调用（根 id 由调用方给出）。
	ChildIDs func(ctx context.Context, parentIDs []string) ([]string, error)

	// Delete 按 id 批量删除；id 不存在时应当视为无事发生（幂等）。
	Delete func(ctx context.Context, ids []string) error
}

// Cascader 级联删除引擎：由静态依赖表驱动
// （state -> city -> location -> car -> reservation），
// 替代散落在各实体生命周期钩子里的隐式级联。
//
// 无跨层事务：先自上而下解析各层 id 集合，再自叶向根逐层删除，
// 中途失败只会留下“子层已删、父层仍在”的可重试状态，
// 重跑同一次级联对已删数据是 no-op。
type Cascader struct {
	levels []Level // 从根到叶有序
}

func NewCascader(levels ...Level) *Cascader {
	return &Cascader{levels: levels}
}

// Delete 从 root 类型的 ids 开始级联删除其下全部后代，最后删除根记录。
// 某层删除失败时返回 *errs.CascadeFailure（标记失败层级），
// 已完成层级的删除不会回滚。
func (c *Cascader) Delete(ctx context.Context, root Kind, ids []string) error {
	if c == nil {
		return fmt.Errorf("cascader is nil")
	}
	if len(ids) == 0 {
		return nil
	}

	start := -1
	for i, lv := range c.levels {
		if lv.Kind == root {
			start = i
			break
		}
	}
	if start < 0 {
		return fmt.Errorf("kind %q is not part of the cascade hierarchy", root)
	}

	// 第一趟：自上而下解析每一层受影响的 id 集合（每层一次批量查询）。
	affected := make([][]string, len(c.levels))
	affected[start] = ids
	for i := start + 1; i < len(c.levels); i++ {
		parents := affected[i-1]
		if len(parents) == 0 {
			break
		}
		children, err := c.levels[i].ChildIDs(ctx, parents)
		if err != nil {
			return fmt.Errorf("resolve %s descendants: %w", c.levels[i].Kind, err)
		}
		affected[i] = children
	}

	// 第二趟：自叶向根删除，保证失败后重试仍能沿外键链找到残留记录。
	for i := len(c.levels) - 1; i >= start; i-- {
		batch := affected[i]
		if len(batch) == 0 {
			continue
		}
		if err := c.levels[i].Delete(ctx, batch); err != nil {
			return &errs.CascadeFailure{Level: string(c.levels[i].Kind), Err: err}
		}
	}
	return nil
}
