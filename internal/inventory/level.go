package inventory

import "github.com/shopspring/decimal"

// Level is a coarse stock indicator for nurses.
type Level string

const (
	LevelOK        Level = "OK"
	LevelAttention Level = "ATTENTION"
	LevelCritical  Level = "CRITICAL"
)

// LevelOf classifies s. With no sealed boxes left the stock needs
// attention, and it is critical once the open pack drops below lowUnits.
func LevelOf(s Stock, lowUnits int) Level {
	if s.SealedBoxes > 0 {
		return LevelOK
	}
	if s.ActivePack.LessThan(decimal.NewFromInt(int64(lowUnits))) {
		return LevelCritical
	}
	return LevelAttention
}
