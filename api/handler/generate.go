package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mcqgen/mcq-generator/api/middleware"
	"github.com/mcqgen/mcq-generator/api/model"
	"github.com/mcqgen/mcq-generator/internal/document"
	"github.com/mcqgen/mcq-generator/internal/pipeline"
	"github.com/mcqgen/mcq-generator/pkg/archive"
)

// GenerateHandler 处理题目生成相关的API请求
type GenerateHandler struct {
	driver    *pipeline.Driver // 生成流水线
	uploadDir string           // 上传文件暂存目录
	outputDir string           // 输出文档目录
	archive   archive.Archive  // 输出文档归档，可为空
	logger    *logrus.Logger   // 日志记录器
}

// NewGenerateHandler 创建新的生成处理器
func NewGenerateHandler(driver *pipeline.Driver, uploadDir, outputDir string, arc archive.Archive) *GenerateHandler {
	return &GenerateHandler{
		driver:    driver,
		uploadDir: uploadDir,
		outputDir: outputDir,
		archive:   arc,
		logger:    middleware.GetLogger(),
	}
}

// Generate 处理题目生成请求
// POST /api/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	// 绑定请求参数
	var req model.GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Invalid generate request")

		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	// 检查文件类型
	filename := req.File.Filename
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" && ext != ".txt" {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"不支持的文件类型，仅支持 .pdf, .txt",
		))
		return
	}

	// 解析页码范围
	startPage, endPage, err := model.ParsePageRange(req.Pages)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的页码范围: "+err.Error(),
		))
		return
	}

	// 解析题型筛选
	typeIDs, err := model.ParseTypeIDs(req.Types)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的题型编号: "+err.Error(),
		))
		return
	}

	// 暂存上传的文件
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		h.logger.WithError(err).Error("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法保存上传的文件",
		))
		return
	}

	sourcePath := filepath.Join(h.uploadDir, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(req.File, sourcePath); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to save uploaded file")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法保存上传的文件",
		))
		return
	}
	defer os.Remove(sourcePath)

	// 确定输出文件名
	outputName := req.Output
	if outputName == "" {
		outputName = strings.TrimSuffix(filename, filepath.Ext(filename)) + "_questions"
	}
	if err := os.MkdirAll(h.outputDir, 0755); err != nil {
		h.logger.WithError(err).Error("Failed to create output directory")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"无法创建输出目录",
		))
		return
	}
	outputPath := filepath.Join(h.outputDir, filepath.Base(outputName))

	// 执行生成任务
	result, err := h.driver.Run(c.Request.Context(), pipeline.RunRequest{
		SourcePath: sourcePath,
		StartPage:  startPage,
		EndPage:    endPage,
		OutputPath: outputPath,
		TypeIDs:    typeIDs,
	})
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Question generation failed")

		var rangeErr *document.InvalidRangeError
		if errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"页码范围超出文档: "+err.Error(),
			))
			return
		}

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"题目生成失败: "+err.Error(),
		))
		return
	}

	resp := model.GenerateResponse{
		RunID:         result.RunID,
		SourceFile:    filename,
		OutputPath:    result.OutputPath,
		ChunkCount:    result.ChunkCount,
		QuestionCount: result.QuestionCount,
		SkippedCount:  result.SkippedCount,
		TypeTallies:   result.TypeTallies,
	}

	// 归档输出文档
	if h.archive != nil {
		if info, err := h.archiveOutput(result.OutputPath); err != nil {
			h.logger.WithError(err).Warn("Failed to archive output document")
		} else {
			resp.ArchiveID = info.ID
		}
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// archiveOutput 将输出文档存入归档
func (h *GenerateHandler) archiveOutput(path string) (archive.FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return archive.FileInfo{}, err
	}
	defer file.Close()

	return h.archive.Save(file, filepath.Base(path))
}
