package errs

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
)

// 本包定义核心层的错误分类（供传输层映射为响应码）：
// - 所有类型均可被 errors.As 识别
// - 存储本身不可用的错误不属于这里的分类，原样向上传递

// ValidationError 入参非法（格式/范围错误），调用方修正后可重试。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// ReferenceError 外键指向的记录不存在（或已被软删除）。
type ReferenceError struct {
	Field string // 出错的外键字段，如 "state_id"
	Kind  string // 被引用的实体类型
	ID    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference %s: %s %q does not exist", e.Field, e.Kind, e.ID)
}

// DuplicateError 唯一性冲突。Scope 描述冲突的唯一性范围。
type DuplicateError struct {
	Scope string // 如 "state.name" / "city.state_id+name" / "car.registration_number"
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %q already exists", e.Scope, e.Value)
}

// ConflictError 预订时间段与既有预订重叠。
type ConflictError struct {
	CarID string
	Start time.Time
	End   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("car %s is already reserved between %s and %s",
		e.CarID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// StateTransitionError 非法的预订状态流转。
type StateTransitionError struct {
	From string
	To   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// NotFoundError id 未命中存活记录（默认包含软删除的记录）。
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// CascadeFailure 级联删除中途失败。Level 标记失败的层级，
// 调用方可据此重试（级联本身是幂等的）。
type CascadeFailure struct {
	Level string
	Err   error
}

func (e *CascadeFailure) Error() string {
	return fmt.Sprintf("cascade delete failed at level %s: %v", e.Level, e.Err)
}

func (e *CascadeFailure) Unwrap() error { return e.Err }

// IsNotFound 判断是否为 NotFoundError。
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicate 判断是否为 DuplicateError。
func IsDuplicate(err error) bool {
	var d *DuplicateError
	return errors.As(err, &d)
}

// GRPCCode 将核心错误映射为 gRPC status code（传输层使用）。
func GRPCCode(err error) codes.Code {
	var (
		ve *ValidationError
		re *ReferenceError
		de *DuplicateError
		ce *ConflictError
		se *StateTransitionError
		ne *NotFoundError
		cf *CascadeFailure
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &re):
		return codes.InvalidArgument
	case errors.As(err, &de), errors.As(err, &ce):
		return codes.AlreadyExists
	case errors.As(err, &se):
		return codes.FailedPrecondition
	case errors.As(err, &ne):
		return codes.NotFound
	case errors.As(err, &cf):
		return codes.Aborted
	default:
		return codes.Internal
	}
}
