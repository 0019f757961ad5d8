package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient 创建指向测试服务器的客户端，重试等待压缩到毫秒级
func newTestClient(t *testing.T, url string) Client {
	t.Helper()
	client, err := NewHuggingFaceClient(
		WithAPIToken("test-token"),
		WithEndpoint(url),
		WithMaxAttempts(3),
		WithBackoff(5*time.Millisecond, 20*time.Millisecond),
	)
	require.NoError(t, err)
	return client
}

// TestGenerateSuccess 测试正常生成与回显剥离
func TestGenerateSuccess(t *testing.T) {
	prompt := "Generate a question about pneumonia"
	completion := "Question: What is the typical finding?\na) A\nb) B\nc) C\nd) D\nCorrect Answer: a"

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req InferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, prompt, req.Inputs)
		require.NotNil(t, req.Parameters)
		assert.Equal(t, 300, *req.Parameters.MaxNewTokens)

		// 模拟提示词回显
		json.NewEncoder(w).Encode([]InferenceResult{
			{GeneratedText: req.Inputs + "\n" + completion},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	resp, err := client.Generate(context.Background(), prompt)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, completion, resp.Text, "回显的提示词应被剥离")
	assert.Contains(t, resp.RawText, prompt)
}

// TestGenerateRetryOnTransportError 测试传输层异常的重试
// 前两次连接被挂断，第三次成功，结果仍然应返回
func TestGenerateRetryOnTransportError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			// 挂断连接，客户端视为传输层错误
			panic(http.ErrAbortHandler)
		}
		json.NewEncoder(w).Encode([]InferenceResult{{GeneratedText: "recovered"}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	resp, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "recovered", resp.Text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "两次失败后的第三次尝试应成功")
}

// TestGenerateRetryExhaustion 测试重试耗尽后的硬失败
func TestGenerateRetryExhaustion(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		panic(http.ErrAbortHandler)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)

	var infErr InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, ErrCodeNetwork, infErr.Code)
	assert.False(t, IsSoftFailure(err), "重试耗尽是硬失败")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "总尝试次数不得超过预算")
}

// TestGenerateNoRetryOnErrorStatus 测试非成功状态码不触发重试
// 这一不对称行为是刻意保留的：只有传输层异常才重试
func TestGenerateNoRetryOnErrorStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)

	assert.True(t, IsSoftFailure(err), "非成功状态码应是软失败")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "软失败不应重试")
}

// TestGenerateEmptyPrompt 测试空提示词
func TestGenerateEmptyPrompt(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")
	_, err := client.Generate(context.Background(), "")

	var infErr InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, ErrCodeEmptyPrompt, infErr.Code)
}

// TestValidateToken 测试令牌校验
func TestValidateToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]InferenceResult{{GeneratedText: "ok"}})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		assert.NoError(t, client.ValidateToken(context.Background()))
	})

	t.Run("rejected token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		err := client.ValidateToken(context.Background())
		require.Error(t, err)

		var infErr InferenceError
		require.ErrorAs(t, err, &infErr)
		assert.Equal(t, ErrCodeInvalidToken, infErr.Code)
	})
}

// TestBackoffProgression 测试退避序列：从起始值翻倍、封顶上限
func TestBackoffProgression(t *testing.T) {
	c := &HuggingFaceClient{
		backoffMin: 2 * time.Second,
		backoffMax: 10 * time.Second,
	}

	assert.Equal(t, 2*time.Second, c.backoff(1))
	assert.Equal(t, 4*time.Second, c.backoff(2))
	assert.Equal(t, 8*time.Second, c.backoff(3))
	assert.Equal(t, 10*time.Second, c.backoff(4), "超过上限后封顶")
	assert.Equal(t, 10*time.Second, c.backoff(5))
}

// TestMissingToken 测试缺失令牌时客户端创建失败
func TestMissingToken(t *testing.T) {
	_, err := NewHuggingFaceClient()
	require.Error(t, err)

	var infErr InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, ErrCodeInvalidToken, infErr.Code)
}

// TestClientRegistry 测试客户端注册表
func TestClientRegistry(t *testing.T) {
	client, err := NewClient("huggingface", WithAPIToken("tok"))
	assert.NoError(t, err)
	assert.Equal(t, "huggingface", client.Name())

	_, err = NewClient("unknown-provider")
	assert.Error(t, err)
}
