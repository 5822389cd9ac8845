package finance

import (
	"github.com/shopspring/decimal"

	"github.com/ivanoskov/finance_desktop/internal/model"
)

// Snapshot - полное представление данных одного пользователя за текущий
// месяц. Заменяется целиком при каждой перезагрузке; между перезагрузками
// содержимое не изменяется (исключение - точечные правки настроек
// сбережений). Срезы после публикации снимка считаются неизменяемыми.
type Snapshot struct {
	UserID int64

	Incomes           []model.Record // сначала новые
	Expenses          []model.Record // сначала новые
	IncomeCategories  []model.Category
	ExpenseCategories []model.Category
	Budgets           []model.Budget

	SavingsGoal decimal.Decimal
	SavingsRate int

	Loading bool
	Err     error
}

// TotalIncome - сумма доходов снимка (текущий месяц)
func (s *Snapshot) TotalIncome() decimal.Decimal {
	return sumAmounts(s.Incomes)
}

// TotalExpenses - сумма расходов снимка (текущий месяц)
func (s *Snapshot) TotalExpenses() decimal.Decimal {
	return sumAmounts(s.Expenses)
}

// Balance - доходы минус расходы за текущий месяц
func (s *Snapshot) Balance() decimal.Decimal {
	return s.TotalIncome().Sub(s.TotalExpenses())
}

func sumAmounts(records []model.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
