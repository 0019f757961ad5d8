package llm

import "strings"

// CompletionStrategy 补全提取策略接口
// 不同推理后端的响应格式不同：有的回显提示词，有的只返回补全。
// 提取逻辑因此做成可插拔的策略。
type CompletionStrategy interface {
	// Extract 从原始生成文本中提取补全部分
	Extract(prompt, raw string) string
}

// EchoStripStrategy 剥离回显提示词的提取策略
// HuggingFace文本生成接口会在generated_text中回显完整提示词，
// 补全位于回显之后
type EchoStripStrategy struct{}

// Extract 定位回显的提示词并返回其后的文本
// 找不到回显时退化为返回整段文本
func (s *EchoStripStrategy) Extract(prompt, raw string) string {
	if prompt == "" {
		return strings.TrimSpace(raw)
	}
	if idx := strings.LastIndex(raw, prompt); idx >= 0 {
		return strings.TrimSpace(raw[idx+len(prompt):])
	}
	return strings.TrimSpace(raw)
}

// PassthroughStrategy 直通提取策略
// 适用于只返回补全、不回显提示词的后端
type PassthroughStrategy struct{}

// Extract 原样返回生成文本
func (s *PassthroughStrategy) Extract(_, raw string) string {
	return strings.TrimSpace(raw)
}
