package charts

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/finance_desktop/internal/finance"
	"github.com/ivanoskov/finance_desktop/internal/model"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestExpensePieRendersPNG(t *testing.T) {
	t.Parallel()

	snapshot := &finance.Snapshot{
		Expenses: []model.Record{
			{Amount: dec("120.50"), Category: "Comida"},
			{Amount: dec("80"), Category: "Transporte"},
			{Amount: dec("15")}, // без категории
		},
	}

	png, err := NewChartGenerator().ExpensePie(snapshot)
	if err != nil {
		t.Fatalf("ExpensePie: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Fatal("expected PNG output")
	}
}

func TestExpensePieEmptySnapshot(t *testing.T) {
	t.Parallel()

	png, err := NewChartGenerator().ExpensePie(&finance.Snapshot{})
	if err != nil {
		t.Fatalf("ExpensePie: %v", err)
	}
	if png != nil {
		t.Fatal("empty snapshot must produce no chart")
	}
}

func TestBudgetBarsRendersPNG(t *testing.T) {
	t.Parallel()

	snapshot := &finance.Snapshot{
		Budgets: []model.Budget{
			{CategoryID: 1, Category: "Comida", Limit: dec("500"), Spent: dec("320")},
			{CategoryID: 2, Limit: dec("100"), Spent: dec("0")},
		},
	}

	png, err := NewChartGenerator().BudgetBars(snapshot)
	if err != nil {
		t.Fatalf("BudgetBars: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Fatal("expected PNG output")
	}
}

func TestBudgetBarsNoBudgets(t *testing.T) {
	t.Parallel()

	png, err := NewChartGenerator().BudgetBars(&finance.Snapshot{})
	if err != nil {
		t.Fatalf("BudgetBars: %v", err)
	}
	if png != nil {
		t.Fatal("no budgets must produce no chart")
	}
}
