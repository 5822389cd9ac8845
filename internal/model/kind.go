package model

// Kind различает доходы и расходы: у каждого вида своя таблица
// операций и своя таблица категорий.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)
