package document

import "fmt"

// InvalidRangeError 页码范围非法错误
// 携带文档的有效页数上限，便于向用户提示可用范围
type InvalidRangeError struct {
	StartPage  int // 请求的起始页（1起）
	EndPage    int // 请求的结束页（含）
	TotalPages int // 文档总页数
}

// Error 实现error接口
func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid page range %d-%d (valid range: 1-%d)",
		e.StartPage, e.EndPage, e.TotalPages)
}

// ExtractionError 文本提取失败错误
// 包装底层的I/O或解析错误，提取失败对流水线而言是致命的
type ExtractionError struct {
	Path string // 源文件路径
	Err  error  // 底层错误
}

// Error 实现error接口
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Path, e.Err)
}

// Unwrap 支持errors.Is/As链式判断
func (e *ExtractionError) Unwrap() error {
	return e.Err
}
