package model

import (
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 注册自定义的页码范围校验规则
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("pagerange", func(fl validator.FieldLevel) bool {
			_, _, err := ParsePageRange(fl.Field().String())
			return err == nil
		})
	}
}

// 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// GenerateRequest 题目生成请求
type GenerateRequest struct {
	File   *multipart.FileHeader `form:"file" binding:"required"`    // 来源材料文件
	Pages  string                `form:"pages" binding:"required,pagerange"` // 页码范围，如 "3-7" 或 "5"
	Output string                `form:"output" binding:"omitempty"` // 输出文件名，缺省时按来源文件名生成
	Types  string                `form:"types" binding:"omitempty"`  // 题型编号筛选，逗号分隔
}

// ParsePageRange 解析页码范围字符串
// 接受 "start-end" 或单页 "n" 两种形式，页码从1开始
func ParsePageRange(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("page range is empty")
	}

	parts := strings.SplitN(s, "-", 2)
	start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start page: %q", parts[0])
	}

	if len(parts) == 1 {
		end = start
	} else {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end page: %q", parts[1])
		}
	}

	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid page range: %d-%d", start, end)
	}
	return start, end, nil
}

// ParseTypeIDs 解析题型编号列表
// 空串返回nil，表示不筛选
func ParseTypeIDs(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var ids []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid question type id: %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RunStatusRequest 任务状态查询请求
type RunStatusRequest struct {
	ID string `uri:"id" binding:"required"` // 任务ID
}
