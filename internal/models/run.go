package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RunStatus 生成任务状态类型
type RunStatus string

const (
	// RunStatusRunning 任务执行中
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted 任务完成
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed 任务失败
	RunStatusFailed RunStatus = "failed"
)

// GenerationRun 一次题目生成任务的数据模型
// 记录来源材料、页码范围和各题型的生成情况
type GenerationRun struct {
	ID            string         `gorm:"primaryKey"`         // 任务ID，主键
	SourceFile    string         `gorm:"not null"`           // 来源文件名
	StartPage     int            `gorm:"not null"`           // 起始页码（含）
	EndPage       int            `gorm:"not null"`           // 结束页码（含）
	OutputPath    string         `gorm:"not null"`           // 输出文档路径
	Status        RunStatus      `gorm:"not null;index"`     // 任务状态
	StartedAt     time.Time      `gorm:"not null;index"`     // 开始时间
	CompletedAt   *time.Time     `gorm:"index"`              // 完成时间
	UpdatedAt     time.Time      `gorm:"not null"`           // 更新时间
	Progress      int            `gorm:"not null;default:0"` // 处理进度（0-100）
	ChunkCount    int            `gorm:"not null;default:0"` // 分块数量
	QuestionCount int            `gorm:"not null;default:0"` // 已接受的题目数量
	SkippedCount  int            `gorm:"not null;default:0"` // 跳过的生成尝试数量
	Error         string         `gorm:"type:text"`          // 错误信息
	TypeTallies   datatypes.JSON `gorm:"type:json"`          // 各题型的接受计数，JSON格式
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *GenerationRun) BeforeCreate(tx *gorm.DB) (err error) {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	if r.Status == "" {
		r.Status = RunStatusRunning
	}
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置时间
func (r *GenerationRun) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 指定表名
func (r *GenerationRun) TableName() string {
	return "generation_runs"
}
