package llm

import "time"

// InferenceRequest 文本生成请求结构
// 与HuggingFace Inference API的请求体对应
type InferenceRequest struct {
	Inputs     string               `json:"inputs"`               // 提示词
	Parameters *InferenceParameters `json:"parameters,omitempty"` // 生成参数
}

// InferenceParameters 生成参数
type InferenceParameters struct {
	MaxNewTokens *int     `json:"max_new_tokens,omitempty"` // 最大生成token数
	Temperature  *float32 `json:"temperature,omitempty"`    // 采样温度
	TopP         *float32 `json:"top_p,omitempty"`          // 核采样概率阈值
}

// InferenceResult 响应数组中的单个生成结果
// 成功响应为JSON数组，首个元素的generated_text包含提示词回显加补全
type InferenceResult struct {
	GeneratedText string `json:"generated_text"` // 原始生成文本
}

// InferenceErrorBody 服务端错误响应体
type InferenceErrorBody struct {
	Error string `json:"error"` // 错误描述
}

// Response 统一的生成响应结构
type Response struct {
	Text       string    // 提取后的补全文本
	RawText    string    // 服务返回的原始文本（含提示词回显）
	StatusCode int       // HTTP状态码
	FinishTime time.Time // 完成时间
}
