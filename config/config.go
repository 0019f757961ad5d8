package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Inference InferenceConfig `mapstructure:"inference"`
	Document  DocumentConfig  `mapstructure:"document"`
	Output    OutputConfig    `mapstructure:"output"`
	Questions QuestionsConfig `mapstructure:"questions"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig HTTP服务配置（仅 -serve 模式使用）
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
	Mode string `mapstructure:"mode"` // 运行模式 (debug/release)
}

// InferenceConfig 远程推理服务配置
type InferenceConfig struct {
	Provider     string        `mapstructure:"provider"`       // 提供商：huggingface
	Endpoint     string        `mapstructure:"endpoint"`       // 推理API端点
	APIToken     string        `mapstructure:"api_token"`      // Bearer令牌，支持${VAR}环境变量展开
	Timeout      time.Duration `mapstructure:"timeout"`        // 单次请求超时时间
	MaxNewTokens int           `mapstructure:"max_new_tokens"` // 最大生成token数
	Temperature  float32       `mapstructure:"temperature"`    // 采样温度
	TopP         float32       `mapstructure:"top_p"`          // 核采样概率阈值
	MaxAttempts  int           `mapstructure:"max_attempts"`   // 总尝试次数（含首次）
	BackoffMin   time.Duration `mapstructure:"backoff_min"`    // 重试等待起始时间
	BackoffMax   time.Duration `mapstructure:"backoff_max"`    // 重试等待上限
}

// DocumentConfig 文档处理配置
type DocumentConfig struct {
	ChunkSize     int `mapstructure:"chunk_size"`     // 分块大小（字符数）
	PromptExcerpt int `mapstructure:"prompt_excerpt"` // 提示词中引用的块前缀长度
}

// OutputConfig 输出文档配置
type OutputConfig struct {
	Dir       string `mapstructure:"dir"`       // 输出目录，不存在时自动创建
	Title     string `mapstructure:"title"`     // 输出文档顶级标题
	Extension string `mapstructure:"extension"` // 默认扩展名（.docx 或 .md）
}

// QuestionType 题型条目
// ID到自然语言描述的映射，配置顺序即每个分块内的生成顺序
type QuestionType struct {
	ID          int    `mapstructure:"id"`          // 题型编号
	Description string `mapstructure:"description"` // 题型描述，嵌入提示词
}

// QuestionsConfig 题型目录配置
type QuestionsConfig struct {
	Types []QuestionType `mapstructure:"types"` // 有序题型目录
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库编号
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// DatabaseConfig 运行历史数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // 数据库类型: sqlite
	DSN  string `mapstructure:"dsn"`  // 数据源名称
}

// ArchiveConfig 成品文档归档配置
type ArchiveConfig struct {
	Enable    bool   `mapstructure:"enable"`     // 是否归档输出文档
	Type      string `mapstructure:"type"`       // 归档类型：local 或 minio
	Path      string `mapstructure:"path"`       // 本地归档路径
	Bucket    string `mapstructure:"bucket"`     // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"`   // MinIO端点
	AccessKey string `mapstructure:"access_key"` // MinIO访问密钥
	SecretKey string `mapstructure:"secret_key"` // MinIO秘密密钥
	UseSSL    bool   `mapstructure:"use_ssl"`    // 是否使用SSL
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // 日志级别
	File       string `mapstructure:"file"`        // 日志文件路径，为空则仅输出到stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // 单个日志文件最大体积
	MaxBackups int    `mapstructure:"max_backups"` // 保留的轮转文件数量
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	// 尝试读取配置文件；找不到时退回默认值
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 设置默认值
	setDefaults(v)

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	// 处理配置项中的${VAR}环境变量引用
	expandEnvironmentVariables(&config)

	// 输出路径拼接依赖非空目录
	if config.Output.Dir == "" {
		config.Output.Dir = "./output"
	}
	config.Output.Dir = filepath.Clean(config.Output.Dir)

	return &config, nil
}

// expandEnvironmentVariables 展开配置值中的${VAR}引用
func expandEnvironmentVariables(cfg *Config) {
	cfg.Inference.APIToken = expandEnv(cfg.Inference.APIToken)
	cfg.Archive.AccessKey = expandEnv(cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = expandEnv(cfg.Archive.SecretKey)
	cfg.Cache.Password = expandEnv(cfg.Cache.Password)
}

// expandEnv 单个值的${VAR}展开，未定义的变量保留原值
func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			return envVal
		}
	}
	return value
}

// DefaultQuestionTypes 默认题型目录
func DefaultQuestionTypes() []QuestionType {
	return []QuestionType{
		{ID: 1, Description: "Case-based diagnosis from radiological features"},
		{ID: 4, Description: "Disease characteristics verification"},
		{ID: 6, Description: "Special feature identification"},
	}
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	// 推理服务默认配置
	v.SetDefault("inference.provider", "huggingface")
	v.SetDefault("inference.endpoint",
		"https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.3")
	v.SetDefault("inference.api_token", "${HF_API_TOKEN}")
	v.SetDefault("inference.timeout", "60s")
	v.SetDefault("inference.max_new_tokens", 300)
	v.SetDefault("inference.temperature", 0.7)
	v.SetDefault("inference.top_p", 0.9)
	v.SetDefault("inference.max_attempts", 3)
	v.SetDefault("inference.backoff_min", "2s")
	v.SetDefault("inference.backoff_max", "10s")

	// 文档处理默认配置
	v.SetDefault("document.chunk_size", 2000)
	v.SetDefault("document.prompt_excerpt", 1500)

	// 输出默认配置
	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.title", "Generated Medical Questions")
	v.SetDefault("output.extension", ".docx")

	// 题型目录默认配置
	types := DefaultQuestionTypes()
	defaults := make([]map[string]interface{}, 0, len(types))
	for _, t := range types {
		defaults = append(defaults, map[string]interface{}{
			"id":          t.ID,
			"description": t.Description,
		})
	}
	v.SetDefault("questions.types", defaults)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 86400)

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/mcqgen.db")

	// 归档默认配置
	v.SetDefault("archive.enable", false)
	v.SetDefault("archive.type", "local")
	v.SetDefault("archive.path", "./archive")
	v.SetDefault("archive.bucket", "mcqgen")
	v.SetDefault("archive.use_ssl", false)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 3)
}
