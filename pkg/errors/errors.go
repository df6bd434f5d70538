package errors

import "errors"

// ErrRecordNotFound 按派生键未找到课程记录
var ErrRecordNotFound = errors.New("课程记录不存在，请刷新后重试")
