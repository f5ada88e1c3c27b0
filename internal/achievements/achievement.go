package achievements

// ConditionType is the closed set of rules an achievement can be
// gated on. Adding a new rule means adding a constant here and a case
// to the evaluator switch; there is no dynamic dispatch.
type ConditionType string

const (
	ConditionConsecutiveDays    ConditionType = "consecutive_days"
	ConditionPagesInSingleDay   ConditionType = "pages_in_single_day"
	ConditionTotalPagesRead     ConditionType = "total_pages_read"
	ConditionReadOnWeekend      ConditionType = "read_on_weekend"
	ConditionTotalBooksFinished ConditionType = "total_books_finished"
	ConditionDaysReadInWeek     ConditionType = "days_read_in_week"
	ConditionFinishLargeBook    ConditionType = "finish_large_book"
	ConditionTotalBooksAdded    ConditionType = "total_books_added"
	ConditionReadBeforeTime     ConditionType = "read_before_time"
	ConditionReadAfterTime      ConditionType = "read_after_time"
)

// Valid reports whether the condition type is one of the known rules.
func (c ConditionType) Valid() bool {
	switch c {
	case ConditionConsecutiveDays, ConditionPagesInSingleDay, ConditionTotalPagesRead,
		ConditionReadOnWeekend, ConditionTotalBooksFinished, ConditionDaysReadInWeek,
		ConditionFinishLargeBook, ConditionTotalBooksAdded, ConditionReadBeforeTime,
		ConditionReadAfterTime:
		return true
	}
	return false
}

// Achievement is one entry of the static catalog. The catalog is loaded
// once at startup and never mutated, so it is safe to share across
// goroutines without synchronization.
type Achievement struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Message        string        `json:"message"`
	Icon           string        `json:"icon"`
	ConditionType  ConditionType `json:"condition_type"`
	ConditionValue int           `json:"condition_value"`
}
