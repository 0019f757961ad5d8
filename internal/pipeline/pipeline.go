package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mcqgen/mcq-generator/internal/document"
	"github.com/mcqgen/mcq-generator/internal/generator"
	"github.com/mcqgen/mcq-generator/internal/models"
	"github.com/mcqgen/mcq-generator/internal/repository"
	"github.com/mcqgen/mcq-generator/internal/writer"
)

// DefaultChunkSize 默认分块长度（按字符计）
const DefaultChunkSize = 2000

// RunRequest 一次生成任务的输入参数
type RunRequest struct {
	SourcePath string // 来源材料路径
	StartPage  int    // 起始页码（含），从1开始
	EndPage    int    // 结束页码（含）
	OutputPath string // 输出文档路径
	TypeIDs    []int  // 题型编号筛选，空表示全部题型
}

// RunResult 一次生成任务的统计结果
type RunResult struct {
	RunID         string      // 任务记录ID，未启用仓储时为空
	OutputPath    string      // 实际输出文档路径
	ChunkCount    int         // 分块数量
	QuestionCount int         // 已接受的题目数量
	SkippedCount  int         // 跳过的生成尝试数量
	TypeTallies   map[int]int // 各题型的接受计数
}

// ProgressFunc 进度回调函数类型
// done为已处理的生成单元数，total为总单元数（分块数×题型数）
type ProgressFunc func(done, total int)

// Driver 生成流水线驱动
// 串联提取、分块、生成、校验和落盘各环节；
// 生成环节严格串行，保持对推理服务的请求节奏可控
type Driver struct {
	generator *generator.Generator
	catalog   generator.TypeCatalog
	chunkSize int
	title     string
	repo      repository.RunRepository
	logger    *logrus.Logger
	progress  ProgressFunc
}

// Option 流水线配置选项
type Option func(*Driver)

// WithCatalog 设置题型目录
func WithCatalog(catalog generator.TypeCatalog) Option {
	return func(d *Driver) {
		if len(catalog) > 0 {
			d.catalog = catalog
		}
	}
}

// WithChunkSize 设置分块长度
func WithChunkSize(size int) Option {
	return func(d *Driver) {
		if size > 0 {
			d.chunkSize = size
		}
	}
}

// WithTitle 设置输出文档标题
func WithTitle(title string) Option {
	return func(d *Driver) {
		if title != "" {
			d.title = title
		}
	}
}

// WithRepository 设置任务仓储，启用任务历史记录
func WithRepository(repo repository.RunRepository) Option {
	return func(d *Driver) {
		d.repo = repo
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithProgress 设置进度回调
func WithProgress(fn ProgressFunc) Option {
	return func(d *Driver) {
		d.progress = fn
	}
}

// NewDriver 创建流水线驱动
func NewDriver(gen *generator.Generator, opts ...Option) *Driver {
	d := &Driver{
		generator: gen,
		catalog:   generator.DefaultCatalog(),
		chunkSize: DefaultChunkSize,
		title:     writer.DefaultTitle,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run 执行一次完整的生成任务
// 提取或落盘失败中止整个任务；单道题目的生成失败或
// 校验不通过只跳过该题，任务继续推进
func (d *Driver) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	catalog := d.catalog.Subset(req.TypeIDs)
	if len(catalog) == 0 {
		return nil, fmt.Errorf("no question types selected")
	}

	outputPath := writer.NormalizeOutputName(req.OutputPath)

	result := &RunResult{
		OutputPath:  outputPath,
		TypeTallies: make(map[int]int),
	}

	// 记录任务开始
	var run *models.GenerationRun
	if d.repo != nil {
		run = &models.GenerationRun{
			SourceFile: req.SourcePath,
			StartPage:  req.StartPage,
			EndPage:    req.EndPage,
			OutputPath: outputPath,
		}
		if err := d.repo.Create(run); err != nil {
			return nil, err
		}
		result.RunID = run.ID
	}

	extractor, err := document.ExtractorFactory(req.SourcePath)
	if err != nil {
		return result, d.abort(run, err)
	}

	text, err := extractor.Extract(req.SourcePath, req.StartPage, req.EndPage)
	if err != nil {
		return result, d.abort(run, err)
	}

	chunks := document.SplitByLength(text, d.chunkSize)
	result.ChunkCount = len(chunks)
	if run != nil {
		run.ChunkCount = len(chunks)
		if err := d.repo.Update(run); err != nil {
			d.logger.WithError(err).Warn("failed to update run record")
		}
	}

	d.logger.WithFields(logrus.Fields{
		"source": req.SourcePath,
		"pages":  fmt.Sprintf("%d-%d", req.StartPage, req.EndPage),
		"chunks": len(chunks),
		"types":  len(catalog),
	}).Info("starting question generation")

	acc, err := writer.NewAccumulator(outputPath, d.title)
	if err != nil {
		return result, d.abort(run, err)
	}

	total := len(chunks) * len(catalog)
	done := 0

	for _, chunk := range chunks {
		for _, qt := range catalog {
			if err := ctx.Err(); err != nil {
				return result, d.abort(run, err)
			}

			candidate, err := d.generator.Generate(ctx, chunk, qt)
			done++

			if err != nil {
				// 重试已在客户端内耗尽，跳过这道题继续任务
				d.logger.WithFields(logrus.Fields{
					"chunk": chunk.Index + 1,
					"type":  qt.ID,
				}).WithError(err).Error("question generation failed, skipping")
				result.SkippedCount++
				d.report(done, total)
				continue
			}

			if candidate == "" {
				// 软失败已由生成服务记录日志
				result.SkippedCount++
				d.report(done, total)
				continue
			}

			if !generator.Validate(candidate) {
				d.logger.WithFields(logrus.Fields{
					"chunk": chunk.Index + 1,
					"type":  qt.ID,
				}).Warn("generated question failed validation, skipping")
				result.SkippedCount++
				d.report(done, total)
				continue
			}

			section := writer.Section{
				ChunkOrdinal:    chunk.Index + 1,
				TypeDescription: qt.Description,
				Content:         candidate,
			}
			if err := acc.Append(section); err != nil {
				d.logger.WithFields(logrus.Fields{
					"chunk": chunk.Index + 1,
					"type":  qt.ID,
				}).WithError(err).Error("failed to write question to output document, skipping")
				result.SkippedCount++
				d.report(done, total)
				continue
			}

			d.generator.MarkAccepted(chunk, qt, candidate)
			result.QuestionCount++
			result.TypeTallies[qt.ID]++
			d.report(done, total)
		}

		if run != nil && total > 0 {
			run.Progress = done * 100 / total
			if err := d.repo.Update(run); err != nil {
				d.logger.WithError(err).Warn("failed to update run progress")
			}
		}
	}

	if run != nil {
		if err := d.repo.Complete(run.ID, result.QuestionCount, result.SkippedCount, result.TypeTallies); err != nil {
			d.logger.WithError(err).Warn("failed to finalize run record")
		}
	}

	d.logger.WithFields(logrus.Fields{
		"accepted": result.QuestionCount,
		"skipped":  result.SkippedCount,
		"output":   outputPath,
	}).Info("question generation completed")

	return result, nil
}

// report 触发进度回调
func (d *Driver) report(done, total int) {
	if d.progress != nil {
		d.progress(done, total)
	}
}

// abort 将任务记录标记为失败并返回原始错误
func (d *Driver) abort(run *models.GenerationRun, cause error) error {
	if run != nil && d.repo != nil {
		if err := d.repo.Fail(run.ID, cause); err != nil {
			d.logger.WithError(err).Warn("failed to mark run as failed")
		}
	}
	return cause
}
