package model

// Level 会员等级，按累计积分门槛解锁
type Level struct {
	Name          string `json:"name"`
	ScoreRequired int    `json:"score_required"`
	Key           int    `json:"key"`
}

// Levels 等级表，按积分门槛升序排列，首项门槛必须为0
var Levels = []Level{
	{Name: "VIP会员", ScoreRequired: 0, Key: 1},
	{Name: "白银会员", ScoreRequired: 10000, Key: 2},
	{Name: "黄金会员", ScoreRequired: 100000, Key: 3},
	{Name: "钻石会员", ScoreRequired: 500000, Key: 4},
}

// DefaultLevel 返回默认（最低）等级
func DefaultLevel() Level {
	return Levels[0]
}

// LevelByKey 按等级键查找等级，未找到时返回默认等级
func LevelByKey(key int) Level {
	for _, level := range Levels {
		if level.Key == key {
			return level
		}
	}
	return DefaultLevel()
}

// TotalScore 累计积分明细的总和，空明细返回0
func TotalScore(entries []ScoreEntry) int {
	total := 0
	for _, entry := range entries {
		total += entry.Value
	}
	return total
}

// ResolveLevel 根据累计积分解析当前等级
// 取等级表中最后一个门槛不超过总积分的等级，负数积分落在最低等级
func ResolveLevel(totalScore int, table []Level) Level {
	level := table[0]
	for _, item := range table {
		if totalScore >= item.ScoreRequired {
			level = item
		}
	}
	return level
}
