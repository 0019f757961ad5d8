package llm

import (
	"errors"
	"fmt"
)

// InferenceError 推理服务调用错误类型
type InferenceError struct {
	Code    int    // 错误码
	Message string // 错误消息
}

// Error 实现error接口
func (e InferenceError) Error() string {
	return fmt.Sprintf("inference error (code=%d): %s", e.Code, e.Message)
}

// 错误码常量
const (
	ErrCodeInvalidToken   = 2001 // 无效的API令牌
	ErrCodeInvalidRequest = 2002 // 无效的请求
	ErrCodeNetwork        = 2003 // 网络连接错误，重试耗尽
	ErrCodeAPIStatus      = 2004 // 服务返回非成功状态码（软失败，不重试）
	ErrCodeBadResponse    = 2005 // 响应体无法解析
	ErrCodeTimeout        = 2006 // 请求超时或上下文取消
	ErrCodeEmptyPrompt    = 2007 // 提示词为空
)

// 错误消息常量
const (
	ErrMsgInvalidToken = "invalid API token or URL"
	ErrMsgEmptyPrompt  = "prompt cannot be empty"
)

// NewInferenceError 创建新的推理错误
func NewInferenceError(code int, message string) InferenceError {
	return InferenceError{
		Code:    code,
		Message: message,
	}
}

// IsSoftFailure 判断错误是否为软失败
// 软失败指请求已完成但被服务拒绝（非成功状态码），调用方应跳过而非中止
func IsSoftFailure(err error) bool {
	var infErr InferenceError
	if errors.As(err, &infErr) {
		return infErr.Code == ErrCodeAPIStatus
	}
	return false
}
