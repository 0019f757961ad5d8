package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// HuggingFace文本生成推理端点
	defaultHuggingFaceEndpoint = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.3"
)

// HuggingFaceClient HuggingFace推理服务客户端实现
type HuggingFaceClient struct {
	apiToken     string             // API令牌
	endpoint     string             // API端点
	httpClient   *http.Client       // HTTP客户端
	maxAttempts  int                // 总尝试次数（含首次）
	backoffMin   time.Duration      // 重试等待起始时间
	backoffMax   time.Duration      // 重试等待上限
	maxNewTokens int                // 最大生成token数
	temperature  float32            // 温度参数
	topP         float32            // topP参数
	completion   CompletionStrategy // 补全提取策略
	logger       *logrus.Logger     // 日志记录器
}

// NewHuggingFaceClient 创建新的HuggingFace推理客户端
func NewHuggingFaceClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	// 令牌不能为空，后续请求全部依赖Bearer认证
	if cfg.APIToken == "" {
		return nil, NewInferenceError(ErrCodeInvalidToken, ErrMsgInvalidToken)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultHuggingFaceEndpoint
	}

	completion := cfg.Completion
	if completion == nil {
		completion = &EchoStripStrategy{}
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	client := &HuggingFaceClient{
		apiToken:     cfg.APIToken,
		endpoint:     endpoint,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		maxAttempts:  maxAttempts,
		backoffMin:   cfg.BackoffMin,
		backoffMax:   cfg.BackoffMax,
		maxNewTokens: cfg.MaxNewTokens,
		temperature:  cfg.Temperature,
		topP:         cfg.TopP,
		completion:   completion,
		logger:       logrus.StandardLogger(),
	}

	return client, nil
}

// Name 返回客户端名称
func (c *HuggingFaceClient) Name() string {
	return "huggingface"
}

// ValidateToken 校验API令牌
// 发送一个最小探测请求，任何非成功结果都视为令牌无效
func (c *HuggingFaceClient) ValidateToken(ctx context.Context) error {
	body, err := json.Marshal(&InferenceRequest{Inputs: "test"})
	if err != nil {
		return NewInferenceError(ErrCodeInvalidRequest, err.Error())
	}

	resp, err := c.doRequest(ctx, body)
	if err != nil {
		return NewInferenceError(ErrCodeInvalidToken,
			fmt.Sprintf("%s: %v", ErrMsgInvalidToken, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Error("API token validation failed")
		return NewInferenceError(ErrCodeInvalidToken, ErrMsgInvalidToken)
	}

	return nil
}

// Generate 根据提示词生成文本补全
// 传输层异常按指数退避重试；非成功状态码不重试，作为软失败返回
func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if prompt == "" {
		return nil, NewInferenceError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	// 应用单次请求选项
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	params := &InferenceParameters{}
	if opts.MaxNewTokens != nil {
		params.MaxNewTokens = opts.MaxNewTokens
	} else {
		tokens := c.maxNewTokens
		params.MaxNewTokens = &tokens
	}
	if opts.Temperature != nil {
		params.Temperature = opts.Temperature
	} else {
		temp := c.temperature
		params.Temperature = &temp
	}
	if opts.TopP != nil {
		params.TopP = opts.TopP
	} else {
		topP := c.topP
		params.TopP = &topP
	}

	jsonData, err := json.Marshal(&InferenceRequest{
		Inputs:     prompt,
		Parameters: params,
	})
	if err != nil {
		return nil, NewInferenceError(ErrCodeInvalidRequest,
			fmt.Sprintf("failed to marshal request: %v", err))
	}

	// 带重试的请求发送
	resp, err := c.doRequestWithRetry(ctx, jsonData)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewInferenceError(ErrCodeBadResponse,
			fmt.Sprintf("failed to read response: %v", err))
	}

	// 非成功状态码是软失败：记录日志后返回，不参与重试
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   truncateForLog(string(body)),
		}).Error("API returned non-success status")

		return nil, NewInferenceError(ErrCodeAPIStatus,
			fmt.Sprintf("API error (status %d): %s", resp.StatusCode, truncateForLog(string(body))))
	}

	var results []InferenceResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, NewInferenceError(ErrCodeBadResponse,
			fmt.Sprintf("failed to parse response: %v", err))
	}
	if len(results) == 0 {
		return nil, NewInferenceError(ErrCodeBadResponse, "empty response from API")
	}

	raw := results[0].GeneratedText
	return &Response{
		Text:       c.completion.Extract(prompt, raw),
		RawText:    raw,
		StatusCode: resp.StatusCode,
		FinishTime: time.Now(),
	}, nil
}

// doRequestWithRetry 发送请求，传输层异常时按指数退避重试
// 只要拿到了HTTP响应（无论状态码）就不再重试
func (c *HuggingFaceClient) doRequestWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			wait := c.backoff(attempt - 1)
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"wait":    wait.String(),
				"error":   lastErr.Error(),
			}).Warn("Retrying inference request")

			select {
			case <-ctx.Done():
				return nil, NewInferenceError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(wait):
			}
		}

		resp, err := c.doRequest(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	// 重试耗尽，向调用方传播为硬失败
	return nil, NewInferenceError(ErrCodeNetwork,
		fmt.Sprintf("request failed after %d attempts: %v", c.maxAttempts, lastErr))
}

// doRequest 发送一次HTTP请求
func (c *HuggingFaceClient) doRequest(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	httpReq.Header.Set("Accept", "application/json")

	return c.httpClient.Do(httpReq)
}

// backoff 计算第n次重试前的等待时间
// 从backoffMin起每次翻倍，封顶backoffMax
func (c *HuggingFaceClient) backoff(n int) time.Duration {
	wait := c.backoffMin
	if wait <= 0 {
		wait = 2 * time.Second
	}
	for i := 1; i < n; i++ {
		wait *= 2
	}
	if c.backoffMax > 0 && wait > c.backoffMax {
		wait = c.backoffMax
	}
	return wait
}

// truncateForLog 截断过长的响应体，避免日志刷屏
func truncateForLog(s string) string {
	const limit = 512
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// 在包初始化时注册HuggingFace客户端
func init() {
	RegisterClient("huggingface", NewHuggingFaceClient)
}
