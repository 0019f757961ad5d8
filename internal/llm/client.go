package llm

import (
	"context"
	"time"
)

// Client 推理服务客户端接口
// 负责与远程文本生成服务的交互
type Client interface {
	// Generate 根据提示词生成文本补全
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error)

	// ValidateToken 校验API令牌是否可用
	// 启动时调用，失败视为致命错误
	ValidateToken(ctx context.Context) error

	// Name 返回客户端名称
	Name() string
}

// Config 推理客户端配置
type Config struct {
	APIToken     string             // Bearer令牌
	Endpoint     string             // 推理API端点
	Timeout      time.Duration      // 单次请求超时时间
	MaxAttempts  int                // 总尝试次数（含首次）
	BackoffMin   time.Duration      // 重试等待起始时间
	BackoffMax   time.Duration      // 重试等待上限
	MaxNewTokens int                // 最大生成token数
	Temperature  float32            // 采样温度(0.0-2.0)
	TopP         float32            // 核采样概率阈值(0.0-1.0)
	Completion   CompletionStrategy // 补全提取策略
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Endpoint:     defaultHuggingFaceEndpoint,
		Timeout:      60 * time.Second,
		MaxAttempts:  3,
		BackoffMin:   2 * time.Second,
		BackoffMax:   10 * time.Second,
		MaxNewTokens: 300,
		Temperature:  0.7,
		TopP:         0.9,
		Completion:   &EchoStripStrategy{},
	}
}

// Option 客户端配置选项函数类型
type Option func(*Config)

// WithAPIToken 设置API令牌
func WithAPIToken(token string) Option {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithEndpoint 设置API端点
func WithEndpoint(url string) Option {
	return func(c *Config) {
		c.Endpoint = url
	}
}

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxAttempts 设置总尝试次数
func WithMaxAttempts(attempts int) Option {
	return func(c *Config) {
		c.MaxAttempts = attempts
	}
}

// WithBackoff 设置重试等待的起始值和上限
func WithBackoff(min, max time.Duration) Option {
	return func(c *Config) {
		c.BackoffMin = min
		c.BackoffMax = max
	}
}

// WithMaxNewTokens 设置最大生成token数
func WithMaxNewTokens(tokens int) Option {
	return func(c *Config) {
		c.MaxNewTokens = tokens
	}
}

// WithTemperature 设置采样温度
func WithTemperature(temp float32) Option {
	return func(c *Config) {
		c.Temperature = temp
	}
}

// WithTopP 设置核采样概率阈值
func WithTopP(topP float32) Option {
	return func(c *Config) {
		c.TopP = topP
	}
}

// WithCompletionStrategy 设置补全提取策略
func WithCompletionStrategy(s CompletionStrategy) Option {
	return func(c *Config) {
		c.Completion = s
	}
}

// NewConfig 创建一个新的配置并应用选项
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// GenerateOption 单次生成请求的选项
type GenerateOption func(*GenerateOptions)

// GenerateOptions 单次生成请求的选项集合
type GenerateOptions struct {
	MaxNewTokens *int     // 最大生成token数
	Temperature  *float32 // 采样温度
	TopP         *float32 // 核采样概率阈值
}

// WithGenerateMaxNewTokens 设置本次请求的最大生成token数
func WithGenerateMaxNewTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxNewTokens = &tokens
	}
}

// WithGenerateTemperature 设置本次请求的采样温度
func WithGenerateTemperature(temp float32) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = &temp
	}
}

// WithGenerateTopP 设置本次请求的核采样概率阈值
func WithGenerateTopP(topP float32) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = &topP
	}
}

// Factory 推理客户端工厂函数类型
type Factory func(opts ...Option) (Client, error)

// 全局注册的推理客户端工厂函数
var clientFactories = make(map[string]Factory)

// RegisterClient 注册推理客户端工厂函数
func RegisterClient(name string, factory Factory) {
	clientFactories[name] = factory
}

// NewClient 根据名称创建推理客户端
func NewClient(name string, opts ...Option) (Client, error) {
	factory, exists := clientFactories[name]
	if !exists {
		return nil, NewInferenceError(
			ErrCodeInvalidRequest,
			"inference client type not registered: "+name)
	}
	return factory(opts...)
}
