package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryCache 测试内存缓存的基本功能
func TestMemoryCache(t *testing.T) {
	config := Config{
		Type:            "memory",
		DefaultTTL:      2 * time.Second,
		CleanupInterval: time.Second,
	}
	c, err := NewMemoryCache(config)
	require.NoError(t, err)

	// Set与Get
	require.NoError(t, c.Set("key1", "value1", 0))

	val, found, err := c.Get("key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	// 不存在的键
	_, found, err = c.Get("missing")
	assert.NoError(t, err)
	assert.False(t, found)

	// 过期
	require.NoError(t, c.Set("expire-soon", "temp", 100*time.Millisecond))
	time.Sleep(200 * time.Millisecond)
	_, found, _ = c.Get("expire-soon")
	assert.False(t, found)

	// 删除
	require.NoError(t, c.Set("to-delete", "x", 0))
	require.NoError(t, c.Delete("to-delete"))
	_, found, _ = c.Get("to-delete")
	assert.False(t, found)

	// 清空
	require.NoError(t, c.Set("a", "1", 0))
	require.NoError(t, c.Set("b", "2", 0))
	require.NoError(t, c.Clear())
	_, found, _ = c.Get("a")
	assert.False(t, found)
}

// TestRedisCache 测试Redis缓存（基于miniredis）
func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := NewRedisCache(Config{
		Type:      "redis",
		RedisAddr: mr.Addr(),
	})
	require.NoError(t, err)

	// Set与Get
	require.NoError(t, c.Set("q1", "Question: ...", time.Hour))
	val, found, err := c.Get("q1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Question: ...", val)

	// 过期由服务端控制
	mr.FastForward(2 * time.Hour)
	_, found, err = c.Get("q1")
	assert.NoError(t, err)
	assert.False(t, found)

	// 删除
	require.NoError(t, c.Set("q2", "x", time.Hour))
	require.NoError(t, c.Delete("q2"))
	_, found, _ = c.Get("q2")
	assert.False(t, found)
}

// TestNewCacheFallback 测试未注册类型回退到内存缓存
func TestNewCacheFallback(t *testing.T) {
	c, err := NewCache(Config{Type: "unknown"})
	assert.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}

// TestQuestionKey 测试题目缓存键的构造
func TestQuestionKey(t *testing.T) {
	k1 := QuestionKey("chunk text one", 1)
	k2 := QuestionKey("chunk text one", 4)
	k3 := QuestionKey("chunk text two", 1)

	assert.True(t, strings.HasPrefix(k1, "question:"))
	assert.NotEqual(t, k1, k2, "同一分块不同题型的键必须不同")
	assert.NotEqual(t, k1, k3, "不同分块的键必须不同")
	assert.Equal(t, k1, QuestionKey("chunk text one", 1), "键构造必须是确定性的")
}
