package engine

import (
	"errors"
	"fmt"
)

// ── 查询引擎错误 ──

var (
	ErrParseFailure       = errors.New("原始行无法规范化")
	ErrInvalidWindow      = errors.New("查询结束时间必须晚于开始时间")
	ErrInvalidInterval    = errors.New("下课时间必须晚于上课时间")
	ErrEmptyStore         = errors.New("没有可用的课程数据")
	ErrInvalidRange       = errors.New("结束日期不能早于开始日期")
	ErrEmptyTeacherFilter = errors.New("请至少选择一位教师")
)

// RowError 单行规范化失败，不中断整批导入
type RowError struct {
	Row    int    // 工作表中的行号（从 1 开始，含表头）
	Field  string // 出错的规范字段名
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("第 %d 行 %s: %s", e.Row, e.Field, e.Reason)
}

// Unwrap 使 errors.Is(err, ErrParseFailure) 成立
func (e *RowError) Unwrap() error { return ErrParseFailure }

// RowWarning 单行可恢复问题：记录保留，但部分字段被置空或归零
type RowWarning struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
