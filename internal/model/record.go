package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recurrence - период повторения регулярной операции
type Recurrence string

const (
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// Record представляет одну финансовую операцию (доход или расход).
// Month и Year фиксируются по дате операции в момент записи и после
// загрузки больше не пересчитываются.
type Record struct {
	ID          int64
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	CategoryID  int64
	Category    string // имя категории из связанной таблицы
	Month       int
	Year        int
	IsRecurring bool
	Recurrence  Recurrence
}
