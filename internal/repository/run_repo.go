package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mcqgen/mcq-generator/internal/database"
	"github.com/mcqgen/mcq-generator/internal/models"
)

// ErrRunNotFound 任务记录不存在
var ErrRunNotFound = errors.New("generation run not found")

// RunRepository 生成任务仓储接口
// 负责生成任务记录的存储和检索
type RunRepository interface {
	// Create 创建任务记录
	Create(run *models.GenerationRun) error

	// Get 获取任务记录
	Get(id string) (*models.GenerationRun, error)

	// List 列出任务记录，按开始时间倒序，支持分页
	List(offset, limit int) ([]*models.GenerationRun, int64, error)

	// Update 更新任务记录
	Update(run *models.GenerationRun) error

	// Complete 将任务标记为完成并记录统计数据
	Complete(id string, questionCount, skippedCount int, tallies map[int]int) error

	// Fail 将任务标记为失败并记录错误信息
	Fail(id string, cause error) error

	// WithContext 创建带有上下文的仓储
	WithContext(ctx context.Context) RunRepository
}

// runRepo 生成任务仓储实现
type runRepo struct {
	db *gorm.DB // 数据库连接
}

// NewRunRepository 创建生成任务仓储实例
func NewRunRepository() RunRepository {
	return &runRepo{
		db: database.MustDB(),
	}
}

// NewRunRepositoryWithDB 使用指定数据库连接创建仓储实例
func NewRunRepositoryWithDB(db *gorm.DB) RunRepository {
	return &runRepo{db: db}
}

// WithContext 创建带有上下文的仓储
func (r *runRepo) WithContext(ctx context.Context) RunRepository {
	return &runRepo{
		db: r.db.WithContext(ctx),
	}
}

// Create 创建任务记录
func (r *runRepo) Create(run *models.GenerationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create generation run: %w", err)
	}
	return nil
}

// Get 获取任务记录
func (r *runRepo) Get(id string) (*models.GenerationRun, error) {
	var run models.GenerationRun
	if err := r.db.First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get generation run: %w", err)
	}
	return &run, nil
}

// List 列出任务记录，按开始时间倒序
func (r *runRepo) List(offset, limit int) ([]*models.GenerationRun, int64, error) {
	var runs []*models.GenerationRun
	var total int64

	if err := r.db.Model(&models.GenerationRun{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count generation runs: %w", err)
	}

	query := r.db.Order("started_at DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list generation runs: %w", err)
	}
	return runs, total, nil
}

// Update 更新任务记录
func (r *runRepo) Update(run *models.GenerationRun) error {
	if err := r.db.Save(run).Error; err != nil {
		return fmt.Errorf("failed to update generation run: %w", err)
	}
	return nil
}

// Complete 将任务标记为完成并记录统计数据
func (r *runRepo) Complete(id string, questionCount, skippedCount int, tallies map[int]int) error {
	run, err := r.Get(id)
	if err != nil {
		return err
	}

	talliesJSON, err := json.Marshal(tallies)
	if err != nil {
		return fmt.Errorf("failed to marshal type tallies: %w", err)
	}

	now := time.Now()
	run.Status = models.RunStatusCompleted
	run.CompletedAt = &now
	run.Progress = 100
	run.QuestionCount = questionCount
	run.SkippedCount = skippedCount
	run.TypeTallies = datatypes.JSON(talliesJSON)

	return r.Update(run)
}

// Fail 将任务标记为失败并记录错误信息
func (r *runRepo) Fail(id string, cause error) error {
	run, err := r.Get(id)
	if err != nil {
		return err
	}

	now := time.Now()
	run.Status = models.RunStatusFailed
	run.CompletedAt = &now
	if cause != nil {
		run.Error = cause.Error()
	}

	return r.Update(run)
}
