package model

import (
	"time"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// GenerateResponse 题目生成响应
type GenerateResponse struct {
	RunID         string      `json:"run_id,omitempty"`     // 任务ID
	SourceFile    string      `json:"source_file"`          // 来源文件名
	OutputPath    string      `json:"output_path"`          // 输出文档路径
	ArchiveID     string      `json:"archive_id,omitempty"` // 输出文档归档ID
	ChunkCount    int         `json:"chunk_count"`          // 分块数量
	QuestionCount int         `json:"question_count"`       // 已接受的题目数量
	SkippedCount  int         `json:"skipped_count"`        // 跳过的生成尝试数量
	TypeTallies   map[int]int `json:"type_tallies"`         // 各题型的接受计数
}

// RunInfo 任务信息
type RunInfo struct {
	ID            string     `json:"id"`                     // 任务ID
	SourceFile    string     `json:"source_file"`            // 来源文件名
	StartPage     int        `json:"start_page"`             // 起始页码
	EndPage       int        `json:"end_page"`               // 结束页码
	OutputPath    string     `json:"output_path"`            // 输出文档路径
	Status        string     `json:"status"`                 // 任务状态
	StartedAt     time.Time  `json:"started_at"`             // 开始时间
	CompletedAt   *time.Time `json:"completed_at,omitempty"` // 完成时间
	ChunkCount    int        `json:"chunk_count"`            // 分块数量
	QuestionCount int        `json:"question_count"`         // 已接受的题目数量
	SkippedCount  int        `json:"skipped_count"`          // 跳过的生成尝试数量
	Error         string     `json:"error,omitempty"`        // 错误信息
}

// RunListResponse 任务列表响应
type RunListResponse struct {
	Total    int64     `json:"total"`     // 总数量
	Page     int       `json:"page"`      // 当前页码
	PageSize int       `json:"page_size"` // 每页大小
	Runs     []RunInfo `json:"runs"`      // 任务列表
}
