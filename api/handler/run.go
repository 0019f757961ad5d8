package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mcqgen/mcq-generator/api/middleware"
	"github.com/mcqgen/mcq-generator/api/model"
	"github.com/mcqgen/mcq-generator/internal/models"
	"github.com/mcqgen/mcq-generator/internal/repository"
)

// RunHandler 处理任务历史相关的API请求
type RunHandler struct {
	repo   repository.RunRepository // 任务仓储
	logger *logrus.Logger           // 日志记录器
}

// NewRunHandler 创建新的任务处理器
func NewRunHandler(repo repository.RunRepository) *RunHandler {
	return &RunHandler{
		repo:   repo,
		logger: middleware.GetLogger(),
	}
}

// ListRuns 列出历史任务
// GET /api/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	var req model.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的分页参数",
		))
		return
	}

	page := req.GetPage()
	pageSize := req.GetPageSize()

	runs, total, err := h.repo.WithContext(c.Request.Context()).List((page-1)*pageSize, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list generation runs")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法获取任务列表",
		))
		return
	}

	resp := model.RunListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Runs:     make([]model.RunInfo, 0, len(runs)),
	}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, toRunInfo(run))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetRun 获取单个任务详情
// GET /api/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	var req model.RunStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的任务ID",
		))
		return
	}

	run, err := h.repo.WithContext(c.Request.Context()).Get(req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"任务不存在",
			))
			return
		}

		h.logger.WithError(err).Error("Failed to get generation run")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法获取任务详情",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(toRunInfo(run)))
}

// toRunInfo 将任务记录转换为响应结构
func toRunInfo(run *models.GenerationRun) model.RunInfo {
	return model.RunInfo{
		ID:            run.ID,
		SourceFile:    run.SourceFile,
		StartPage:     run.StartPage,
		EndPage:       run.EndPage,
		OutputPath:    run.OutputPath,
		Status:        string(run.Status),
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		ChunkCount:    run.ChunkCount,
		QuestionCount: run.QuestionCount,
		SkippedCount:  run.SkippedCount,
		Error:         run.Error,
	}
}
