package generator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mcqgen/mcq-generator/internal/cache"
	"github.com/mcqgen/mcq-generator/internal/document"
	"github.com/mcqgen/mcq-generator/internal/llm"
)

// Generator 题目生成服务
// 负责构造提示词、调用推理客户端并复用已接受的题目
type Generator struct {
	client       llm.Client
	cache        cache.Cache
	cacheTTL     time.Duration
	excerptLimit int
	logger       *logrus.Logger
}

// Option 生成服务配置选项
type Option func(*Generator)

// WithCache 设置题目缓存及其过期时间
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(g *Generator) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// WithExcerptLimit 设置提示词中分块摘录的长度上限
func WithExcerptLimit(limit int) Option {
	return func(g *Generator) {
		if limit > 0 {
			g.excerptLimit = limit
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator 创建题目生成服务
func NewGenerator(client llm.Client, opts ...Option) *Generator {
	g := &Generator{
		client:       client,
		excerptLimit: DefaultExcerptLimit,
		logger:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 为指定分块和题型生成一道候选题目
// 缓存命中时直接返回已接受的题目，不再调用推理服务。
// 推理服务返回非成功状态码属于软失败，返回空串且不报错，
// 由调用方决定跳过；传输层错误重试耗尽后作为硬错误返回
func (g *Generator) Generate(ctx context.Context, chunk document.Chunk, qt QuestionType) (string, error) {
	if g.cache != nil {
		key := cache.QuestionKey(chunk.Text, qt.ID)
		if cached, found, err := g.cache.Get(key); err == nil && found {
			g.logger.WithFields(logrus.Fields{
				"chunk": chunk.Index,
				"type":  qt.ID,
			}).Debug("question cache hit")
			return cached, nil
		}
	}

	prompt := BuildPrompt(qt, chunk.Text, g.excerptLimit)

	resp, err := g.client.Generate(ctx, prompt)
	if err != nil {
		if llm.IsSoftFailure(err) {
			g.logger.WithFields(logrus.Fields{
				"chunk": chunk.Index,
				"type":  qt.ID,
			}).WithError(err).Warn("inference rejected request, skipping question")
			return "", nil
		}
		return "", err
	}

	return resp.Text, nil
}

// MarkAccepted 记录一道通过校验的题目
// 只有被接受的题目才进入缓存，避免重跑时复用不合格结果
func (g *Generator) MarkAccepted(chunk document.Chunk, qt QuestionType, text string) {
	if g.cache == nil {
		return
	}

	key := cache.QuestionKey(chunk.Text, qt.ID)
	if err := g.cache.Set(key, text, g.cacheTTL); err != nil {
		g.logger.WithError(err).Warn("failed to cache accepted question")
	}
}
