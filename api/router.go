package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mcqgen/mcq-generator/api/handler"
	"github.com/mcqgen/mcq-generator/api/middleware"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	genHandler *handler.GenerateHandler,
	runHandler *handler.RunHandler,
) *gin.Engine {
	// 创建默认的Gin路由引擎
	router := gin.Default()

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.SetTraceID())

	// 创建API分组
	api := router.Group("/api")
	{
		// 题目生成API - POST /api/generate
		api.POST("/generate", genHandler.Generate)

		// 任务历史API
		if runHandler != nil {
			runGroup := api.Group("/runs")
			{
				// 获取任务列表 - GET /api/runs
				runGroup.GET("", runHandler.ListRuns)

				// 获取任务详情 - GET /api/runs/:id
				runGroup.GET("/:id", runHandler.GetRun)
			}
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}
