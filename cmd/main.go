package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mcqgen/mcq-generator/api"
	"github.com/mcqgen/mcq-generator/api/handler"
	"github.com/mcqgen/mcq-generator/api/model"
	appconfig "github.com/mcqgen/mcq-generator/config"
	"github.com/mcqgen/mcq-generator/internal/cache"
	"github.com/mcqgen/mcq-generator/internal/database"
	"github.com/mcqgen/mcq-generator/internal/generator"
	"github.com/mcqgen/mcq-generator/internal/llm"
	"github.com/mcqgen/mcq-generator/internal/pipeline"
	"github.com/mcqgen/mcq-generator/internal/repository"
	"github.com/mcqgen/mcq-generator/pkg/archive"
)

// 命令行选项
type options struct {
	ConfigFile string // 配置文件路径
	Source     string // 来源材料路径
	Pages      string // 页码范围，如 "3-7"
	Output     string // 输出文件名
	Types      string // 题型编号筛选，逗号分隔
	Serve      bool   // 以HTTP服务模式运行
	Port       int    // 服务端口
	LogLevel   string // 日志级别，覆盖配置文件
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.ConfigFile, "config", "", "path to config file")
	flag.StringVar(&opts.Source, "pdf", "", "path to source PDF file")
	flag.StringVar(&opts.Pages, "pages", "", "page range, e.g. 3-7")
	flag.StringVar(&opts.Output, "output", "", "output file name")
	flag.StringVar(&opts.Types, "types", "", "comma separated question type ids")
	flag.BoolVar(&opts.Serve, "serve", false, "run as HTTP service")
	flag.IntVar(&opts.Port, "port", 0, "HTTP service port")
	flag.StringVar(&opts.LogLevel, "log-level", "", "log level (debug/info/warn/error)")
	flag.Parse()

	return opts
}

func main() {
	// .env文件存在时加载环境变量
	_ = godotenv.Load()

	opts := parseFlags()

	cfg, err := appconfig.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	logger := setupLogger(cfg.Log)

	// 初始化数据库
	if err := database.Setup(&database.Config{
		Type:         cfg.Database.Type,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		MaxLifetime:  time.Hour,
	}, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	repo := repository.NewRunRepository()

	// 创建缓存服务
	var cacheService cache.Cache
	if cfg.Cache.Enable {
		cacheService, err = cache.NewCache(cache.Config{
			Type:            cfg.Cache.Type,
			RedisAddr:       cfg.Cache.Address,
			RedisPassword:   cfg.Cache.Password,
			RedisDB:         cfg.Cache.DB,
			DefaultTTL:      time.Duration(cfg.Cache.TTL) * time.Second,
			CleanupInterval: 10 * time.Minute,
		})
		if err != nil {
			logger.Warnf("Failed to initialize cache, continuing without it: %v", err)
			cacheService = nil
		}
	}

	// 创建推理客户端
	client, err := llm.NewClient(cfg.Inference.Provider,
		llm.WithAPIToken(cfg.Inference.APIToken),
		llm.WithEndpoint(cfg.Inference.Endpoint),
		llm.WithTimeout(cfg.Inference.Timeout),
		llm.WithMaxAttempts(cfg.Inference.MaxAttempts),
		llm.WithBackoff(cfg.Inference.BackoffMin, cfg.Inference.BackoffMax),
		llm.WithMaxNewTokens(cfg.Inference.MaxNewTokens),
		llm.WithTemperature(cfg.Inference.Temperature),
		llm.WithTopP(cfg.Inference.TopP),
	)
	if err != nil {
		logger.Fatalf("Failed to initialize inference client: %v", err)
	}

	// 创建题目生成服务
	genOpts := []generator.Option{
		generator.WithLogger(logger),
		generator.WithExcerptLimit(cfg.Document.PromptExcerpt),
	}
	if cacheService != nil {
		genOpts = append(genOpts, generator.WithCache(cacheService, time.Duration(cfg.Cache.TTL)*time.Second))
	}
	gen := generator.NewGenerator(client, genOpts...)

	catalog := catalogFromConfig(cfg.Questions.Types)

	if opts.Serve {
		runServer(cfg, gen, catalog, repo, logger)
		return
	}

	runCLI(opts, cfg, client, gen, catalog, repo, logger)
}

// runCLI 以交互式命令行模式执行一次生成任务
func runCLI(
	opts options,
	cfg *appconfig.Config,
	client llm.Client,
	gen *generator.Generator,
	catalog generator.TypeCatalog,
	repo repository.RunRepository,
	logger *logrus.Logger,
) {
	fmt.Println("Medical Question Generator")
	fmt.Println("==========================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 校验API令牌
	validateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err := client.ValidateToken(validateCtx)
	cancel()
	if err != nil {
		logger.Errorf("API token validation failed: %v", err)
		printGuidance()
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	sourcePath := opts.Source
	if sourcePath == "" {
		sourcePath = promptLine(reader, "\nEnter full path to PDF file: ")
	}

	pages := opts.Pages
	if pages == "" {
		pages = promptLine(reader, "Enter page range (e.g., 1-10): ")
	}
	startPage, endPage, err := model.ParsePageRange(pages)
	if err != nil {
		logger.Errorf("Invalid page range: %v", err)
		printGuidance()
		os.Exit(1)
	}

	outputName := opts.Output
	if outputName == "" {
		outputName = promptLine(reader, "Output file name (e.g., questions.docx): ")
	}
	if filepath.Ext(outputName) == "" && cfg.Output.Extension != "" {
		outputName += cfg.Output.Extension
	}

	typeIDs, err := model.ParseTypeIDs(opts.Types)
	if err != nil {
		logger.Fatalf("Invalid question type ids: %v", err)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}
	outputPath := filepath.Join(cfg.Output.Dir, outputName)

	fmt.Println("\nExtracting text and generating questions...")

	var bar *progressbar.ProgressBar
	driver := pipeline.NewDriver(gen,
		pipeline.WithCatalog(catalog),
		pipeline.WithChunkSize(cfg.Document.ChunkSize),
		pipeline.WithTitle(cfg.Output.Title),
		pipeline.WithRepository(repo),
		pipeline.WithLogger(logger),
		pipeline.WithProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Generating Questions"),
					progressbar.OptionShowCount(),
					progressbar.OptionSetItsString("question"),
				)
			}
			_ = bar.Set(done)
		}),
	)

	result, err := driver.Run(ctx, pipeline.RunRequest{
		SourcePath: sourcePath,
		StartPage:  startPage,
		EndPage:    endPage,
		OutputPath: outputPath,
		TypeIDs:    typeIDs,
	})
	if err != nil {
		logger.Errorf("Fatal error: %v", err)
		printGuidance()
		os.Exit(1)
	}

	// 归档输出文档
	if cfg.Archive.Enable {
		if err := archiveOutput(cfg, result.OutputPath, logger); err != nil {
			logger.Warnf("Failed to archive output document: %v", err)
		}
	}

	fmt.Printf("\n\nSuccessfully created %d questions in %s\n", result.QuestionCount, result.OutputPath)
	if result.SkippedCount > 0 {
		fmt.Printf("Skipped %d generation attempts (see log for details)\n", result.SkippedCount)
	}
	fmt.Println("Note: The Hugging Face API has rate limits. For heavy usage, consider:")
	fmt.Println("- Using a paid inference endpoint")
	fmt.Println("- Running a local model instead")
}

// runServer 以HTTP服务模式运行
func runServer(
	cfg *appconfig.Config,
	gen *generator.Generator,
	catalog generator.TypeCatalog,
	repo repository.RunRepository,
	logger *logrus.Logger,
) {
	gin.SetMode(cfg.Server.Mode)

	driver := pipeline.NewDriver(gen,
		pipeline.WithCatalog(catalog),
		pipeline.WithChunkSize(cfg.Document.ChunkSize),
		pipeline.WithTitle(cfg.Output.Title),
		pipeline.WithRepository(repo),
		pipeline.WithLogger(logger),
	)

	var arc archive.Archive
	if cfg.Archive.Enable {
		var err error
		arc, err = setupArchive(cfg)
		if err != nil {
			logger.Warnf("Failed to initialize archive, continuing without it: %v", err)
		}
	}

	genHandler := handler.NewGenerateHandler(driver, filepath.Join(cfg.Output.Dir, "uploads"), cfg.Output.Dir, arc)
	runHandler := handler.NewRunHandler(repo)
	router := api.SetupRouter(genHandler, runHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Infof("HTTP service listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP service: %v", err)
		}
	}()

	// 等待退出信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down HTTP service...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Forced to shutdown: %v", err)
	}
	logger.Info("HTTP service stopped")
}

// setupLogger 初始化日志记录器
// 配置了日志文件时同时输出到stdout和轮转文件
func setupLogger(cfg appconfig.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// setupArchive 根据配置创建归档实例
func setupArchive(cfg *appconfig.Config) (archive.Archive, error) {
	switch cfg.Archive.Type {
	case "minio":
		return archive.NewMinioArchive(archive.MinioConfig{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
		})
	default:
		return archive.NewLocalArchive(archive.LocalConfig{
			Path: cfg.Archive.Path,
		})
	}
}

// archiveOutput 将输出文档存入归档
func archiveOutput(cfg *appconfig.Config, outputPath string, logger *logrus.Logger) error {
	arc, err := setupArchive(cfg)
	if err != nil {
		return err
	}

	file, err := os.Open(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := arc.Save(file, filepath.Base(outputPath))
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"archive_id": info.ID,
		"path":       info.Path,
	}).Info("Output document archived")
	return nil
}

// catalogFromConfig 将配置中的题型列表转换为题型目录
func catalogFromConfig(types []appconfig.QuestionType) generator.TypeCatalog {
	if len(types) == 0 {
		return generator.DefaultCatalog()
	}

	catalog := make(generator.TypeCatalog, 0, len(types))
	for _, t := range types {
		catalog = append(catalog, generator.QuestionType{
			ID:          t.ID,
			Description: t.Description,
		})
	}
	return catalog
}

// promptLine 输出提示并读取一行输入
func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// printGuidance 输出排障提示
func printGuidance() {
	fmt.Println("Please check:")
	fmt.Println("- Your API token is valid")
	fmt.Println("- PDF path is correct")
	fmt.Println("- Page numbers are valid")
}
