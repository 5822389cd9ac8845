package model

import "github.com/shopspring/decimal"

// Budget - месячный лимит трат по категории расходов.
// Spent не хранится в базе: его заполняет синхронизатор из списка
// расходов той же загрузки.
type Budget struct {
	ID         int64
	CategoryID int64
	Category   string
	Month      int
	Year       int
	Limit      decimal.Decimal
	Spent      decimal.Decimal
}

// Remaining возвращает остаток лимита (может быть отрицательным).
func (b Budget) Remaining() decimal.Decimal {
	return b.Limit.Sub(b.Spent)
}
