package model

// Level thresholds: lifetime xp maps deterministically onto five levels.
var levelThresholds = []struct {
	minXP int64
	level int
	rank  string
}{
	{5000, 5, "Legend"},
	{1000, 4, "Professional"},
	{500, 3, "Advanced"},
	{100, 2, "Intermediate"},
	{0, 1, "Novice"},
}

// LevelForXP returns the level for a lifetime xp total.
func LevelForXP(xp int64) int {
	for _, t := range levelThresholds {
		if xp >= t.minXP {
			return t.level
		}
	}
	return 1
}

// RankForLevel returns the fixed rank label for a level.
func RankForLevel(level int) string {
	for _, t := range levelThresholds {
		if level == t.level {
			return t.rank
		}
	}
	return "Novice"
}
