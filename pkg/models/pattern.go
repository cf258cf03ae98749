package models

// PresetPattern is a named, fixed sequence of review day-offsets offered
// as an alternative to adaptive SM-2 scheduling. The catalog is static;
// items reference a pattern by id or carry a literal copy in
// CustomIntervals.
type PresetPattern struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Intervals   IntervalList `json:"intervals"`
}

// PatternIDCustom marks an item whose intervals come from its own
// CustomIntervals field instead of the preset catalog
const PatternIDCustom = "custom"
