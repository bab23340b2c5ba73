package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors for layout operations.
var (
	// ErrValidation 表示某个字段超出了行数/数量上限，具体信息见 *ValidationError。
	ErrValidation = errors.New("layout: 字段校验失败")
	// ErrPrecondition 表示渲染前置条件不满足，例如发票没有任何商品。
	ErrPrecondition = errors.New("layout: 渲染前置条件不满足")
	// ErrBackend 包装绘制后端或输出目标返回的错误。
	ErrBackend = errors.New("layout: 绘制后端失败")

	ErrMissingBackend = errors.New("layout: 缺少绘制后端 Backend")
	ErrFooterOverlap  = errors.New("layout: 正文与页脚重叠")
	ErrEnded          = errors.New("layout: 文档已结束")

	// DSL 构建相关错误。
	ErrUnknownKind  = errors.New("layout: 未知的文档类型")
	ErrUnknownField = errors.New("layout: 未知字段")
	ErrFieldType    = errors.New("layout: 字段类型错误")
)

// ValidationError describes a violated field invariant.
type ValidationError struct {
	Field string // 字段名，例如 "receiver"
	Rule  string // "max" 或 "min"
	Limit int
	Got   int
}

func (e *ValidationError) Error() string {
	if e.Rule == "min" {
		return fmt.Sprintf("%s: 值 %d 小于下限 %d", e.Field, e.Got, e.Limit)
	}
	return fmt.Sprintf("%s: 行数 %d 超过上限 %d", e.Field, e.Got, e.Limit)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func backendError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}
