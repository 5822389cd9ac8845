package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/ivanoskov/finance_desktop/internal/finance"
)

// ChartGenerator рисует PNG-диаграммы по снимку синхронизатора.
// Чистая функция снимка: к шлюзу не обращается.
type ChartGenerator struct{}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// ExpensePie - круговая диаграмма расходов месяца по категориям.
// Возвращает nil без ошибки, если рисовать нечего.
func (g *ChartGenerator) ExpensePie(snapshot *finance.Snapshot) ([]byte, error) {
	totals := make(map[string]float64)
	for _, e := range snapshot.Expenses {
		name := e.Category
		if name == "" {
			name = "Sin categoría"
		}
		totals[name] += e.Amount.InexactFloat64()
	}

	values := make([]chart.Value, 0, len(totals))
	for name, total := range totals {
		if total <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (S/ %.2f)", name, total),
			Value: total,
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:  "Gastos por categoría",
		Width:  800,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render expense pie: %w", err)
	}
	return buf.Bytes(), nil
}

// BudgetBars - столбчатая диаграмма потраченного по бюджетам месяца.
// Лимит категории выносится в подпись столбца.
func (g *ChartGenerator) BudgetBars(snapshot *finance.Snapshot) ([]byte, error) {
	if len(snapshot.Budgets) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(snapshot.Budgets))
	for _, b := range snapshot.Budgets {
		name := b.Category
		if name == "" {
			name = fmt.Sprintf("#%d", b.CategoryID)
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s\nlímite S/ %s", name, b.Limit.StringFixed(2)),
			Value: b.Spent.InexactFloat64(),
		})
	}

	barChart := chart.BarChart{
		Title:    "Presupuestos del mes",
		Width:    800,
		Height:   600,
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := barChart.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render budget bars: %w", err)
	}
	return buf.Bytes(), nil
}
