package assistant

import (
	"context"
	"encoding/json"
	"log"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/finance_desktop/internal/model"
)

// Gateway - часть шлюза, доступная ассистенту. Инструменты ходят в базу
// напрямую, минуя кэш синхронизатора: ассистенту нужны произвольные
// месяцы, которых в снимке нет.
type Gateway interface {
	SumRecords(ctx context.Context, kind model.Kind, userID int64) (decimal.Decimal, error)
	GetRecords(ctx context.Context, kind model.Kind, userID int64, month, year int) ([]model.Record, error)
	GetUserSettings(ctx context.Context, userID int64) (*model.UserSettings, error)
}

// Единственные три запроса, доступные модели. Мутирующих инструментов
// нет: граница "только чтение" обеспечивается самим перечнем, а не
// проверкой прав внутри общего запроса.
func financeTools() []Tool {
	emptyParams := json.RawMessage(`{"type":"object","properties":{},"required":[]}`)

	return []Tool{
		{
			Type: "function",
			Function: ToolFunction{
				Name:        "get_financial_summary",
				Description: "Obtiene un resumen de ingresos y gastos totales del usuario.",
				Parameters:  emptyParams,
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        "get_monthly_details",
				Description: "Obtiene el detalle de ingresos y gastos de un mes y año específicos. Útil para calcular ahorros del mes (Ingresos - Gastos).",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"month": {"type": "integer", "description": "Número del mes (1-12)"},
						"year": {"type": "integer", "description": "Año (ej. 2024)"}
					},
					"required": ["month", "year"]
				}`),
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        "get_savings_info",
				Description: "Obtiene información sobre la meta de ahorro y tasa de ahorro del usuario.",
				Parameters:  emptyParams,
			},
		},
	}
}

const refusalPayload = "Función no encontrada o acción no permitida. Este sistema es solo de CONSULTA. " +
	"Si deseas calcular ahorros, pídeme que revise tus ingresos y gastos del mes."

// ToolBridge исполняет инструменты от имени одного пользователя
type ToolBridge struct {
	repo   Gateway
	userID int64
}

func NewToolBridge(repo Gateway, userID int64) *ToolBridge {
	return &ToolBridge{
		repo:   repo,
		userID: userID,
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

// Execute выполняет именованный инструмент. Ошибки не пробрасываются:
// любая проблема превращается в структурированный ответ для модели,
// ход диалога не прерывается.
func (b *ToolBridge) Execute(ctx context.Context, name string, args json.RawMessage) interface{} {
	if b.userID == 0 {
		return errorPayload{Error: "Usuario no identificado."}
	}

	switch name {
	case "get_financial_summary":
		return b.financialSummary(ctx)
	case "get_monthly_details":
		return b.monthlyDetails(ctx, args)
	case "get_savings_info":
		return b.savingsInfo(ctx)
	default:
		return errorPayload{Error: refusalPayload}
	}
}

func (b *ToolBridge) financialSummary(ctx context.Context) interface{} {
	// Суммы за все время, а не за месяц снимка
	totalIncomes, err := b.repo.SumRecords(ctx, model.KindIncome, b.userID)
	if err != nil {
		return toolError(err)
	}
	totalExpenses, err := b.repo.SumRecords(ctx, model.KindExpense, b.userID)
	if err != nil {
		return toolError(err)
	}

	return map[string]interface{}{
		"totalIncomes":  totalIncomes,
		"totalExpenses": totalExpenses,
		"balance":       totalIncomes.Sub(totalExpenses),
	}
}

type monthlyArgs struct {
	Month json.Number `json:"month"`
	Year  json.Number `json:"year"`
}

func (b *ToolBridge) monthlyDetails(ctx context.Context, args json.RawMessage) interface{} {
	var parsed monthlyArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return errorPayload{Error: "Mes o año inválidos."}
	}

	month, monthErr := parsed.Month.Int64()
	year, yearErr := parsed.Year.Int64()
	if monthErr != nil || yearErr != nil || month < 1 || month > 12 || year <= 0 {
		return errorPayload{Error: "Mes o año inválidos."}
	}

	incomes, err := b.repo.GetRecords(ctx, model.KindIncome, b.userID, int(month), int(year))
	if err != nil {
		return toolError(err)
	}
	expenses, err := b.repo.GetRecords(ctx, model.KindExpense, b.userID, int(month), int(year))
	if err != nil {
		return toolError(err)
	}

	return map[string]interface{}{
		"incomes":  recordDetails(incomes),
		"expenses": recordDetails(expenses),
		"month":    month,
		"year":     year,
	}
}

func (b *ToolBridge) savingsInfo(ctx context.Context) interface{} {
	settings, err := b.repo.GetUserSettings(ctx, b.userID)
	if err != nil {
		return toolError(err)
	}
	if settings == nil {
		return model.UserSettings{
			SavingsGoal: decimal.Zero,
			SavingsRate: model.DefaultSavingsRate,
		}
	}
	return settings
}

type recordDetail struct {
	Amount      decimal.Decimal `json:"monto"`
	Description string          `json:"descripcion"`
	Date        string          `json:"fecha"`
}

func recordDetails(records []model.Record) []recordDetail {
	details := make([]recordDetail, 0, len(records))
	for _, r := range records {
		details = append(details, recordDetail{
			Amount:      r.Amount,
			Description: r.Description,
			Date:        r.Date.Format("2006-01-02"),
		})
	}
	return details
}

func toolError(err error) interface{} {
	log.Printf("Ошибка при выполнении инструмента ассистента: %v", err)
	return errorPayload{Error: err.Error()}
}
