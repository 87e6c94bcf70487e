package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTotalScore 测试积分总和计算
func TestTotalScore(t *testing.T) {
	entries := []ScoreEntry{
		{Value: 100},
		{Value: 250},
	}
	assert.Equal(t, 350, TotalScore(entries))

	// 空明细返回0
	assert.Equal(t, 0, TotalScore(nil))
	assert.Equal(t, 0, TotalScore([]ScoreEntry{}))
}

// TestResolveLevelBoundaries 测试等级门槛的边界取值
func TestResolveLevelBoundaries(t *testing.T) {
	assert.Equal(t, "VIP会员", ResolveLevel(0, Levels).Name)
	assert.Equal(t, "VIP会员", ResolveLevel(9999, Levels).Name)
	assert.Equal(t, "白银会员", ResolveLevel(10000, Levels).Name)
	assert.Equal(t, "白银会员", ResolveLevel(99999, Levels).Name)
	assert.Equal(t, "黄金会员", ResolveLevel(100000, Levels).Name)
	assert.Equal(t, "钻石会员", ResolveLevel(500000, Levels).Name)
	assert.Equal(t, "钻石会员", ResolveLevel(10000000, Levels).Name)
}

// TestResolveLevelMonotonic 测试积分越高等级键单调不减
func TestResolveLevelMonotonic(t *testing.T) {
	totals := []int{0, 1, 9999, 10000, 10001, 99999, 100000, 499999, 500000, 1000000}
	prev := ResolveLevel(totals[0], Levels).Key
	for _, total := range totals[1:] {
		key := ResolveLevel(total, Levels).Key
		assert.GreaterOrEqual(t, key, prev, "total=%d", total)
		prev = key
	}
}

// TestResolveLevelNegative 测试负数积分落在最低等级
func TestResolveLevelNegative(t *testing.T) {
	level := ResolveLevel(-100, Levels)
	assert.Equal(t, 1, level.Key)
	assert.Equal(t, "VIP会员", level.Name)
}

// TestResolveLevelIdempotent 测试重复解析结果不变
func TestResolveLevelIdempotent(t *testing.T) {
	first := ResolveLevel(12345, Levels)
	second := ResolveLevel(12345, Levels)
	assert.Equal(t, first, second)
}

// TestLevelTableInvariant 测试等级表门槛严格递增且首项为0
func TestLevelTableInvariant(t *testing.T) {
	assert.Equal(t, 0, Levels[0].ScoreRequired)
	for i := 1; i < len(Levels); i++ {
		assert.Greater(t, Levels[i].ScoreRequired, Levels[i-1].ScoreRequired)
		assert.Equal(t, Levels[i-1].Key+1, Levels[i].Key)
	}
}

// TestLevelByKey 测试按键查找等级
func TestLevelByKey(t *testing.T) {
	assert.Equal(t, "黄金会员", LevelByKey(3).Name)
	// 未知键回退到默认等级
	assert.Equal(t, DefaultLevel(), LevelByKey(99))
}
