package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/finance_desktop/internal/model"
)

const dateLayout = "2006-01-02"

// SupabaseRepository - реализация шлюза поверх размещенной базы Supabase.
// Схема (испанские имена таблиц и колонок) задана на стороне хостинга.
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

func recordTable(kind model.Kind) (table, idCol, catCol, dateCol, catTable string) {
	if kind == model.KindIncome {
		return "Ingresos", "id_ingreso", "id_tipo_ingreso", "fecha_ingreso", "TiposIngreso"
	}
	return "Gastos", "id_gasto", "id_tipo_gasto", "fecha_gasto", "TiposGasto"
}

func categoryTable(kind model.Kind) (table, idCol string) {
	if kind == model.KindIncome {
		return "TiposIngreso", "id_tipo_ingreso"
	}
	return "TiposGasto", "id_tipo_gasto"
}

// --- Пользователи ---

func (r *SupabaseRepository) GetUserByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	data, _, err := r.client.From("Usuarios").
		Select("*", "", false).
		Eq("correo", email).
		Eq("contrasena", password).
		Execute()
	if err != nil {
		return nil, gatewayErr("select user by credentials", err)
	}
	return firstUser(data)
}

func (r *SupabaseRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	data, _, err := r.client.From("Usuarios").
		Select("*", "", false).
		Eq("correo", email).
		Execute()
	if err != nil {
		return nil, gatewayErr("select user by email", err)
	}
	return firstUser(data)
}

func (r *SupabaseRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	data, _, err := r.client.From("Usuarios").
		Select("*", "", false).
		Eq("id_usuario", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, gatewayErr("select user by id", err)
	}
	return firstUser(data)
}

func (r *SupabaseRepository) CreateUser(ctx context.Context, name, email, password string) (*model.User, error) {
	// Роль и настройки сбережений заполняются значениями по умолчанию на стороне базы
	row := struct {
		Name     string `json:"nombre"`
		Email    string `json:"correo"`
		Password string `json:"contrasena"`
		Role     string `json:"rol"`
	}{Name: name, Email: email, Password: password, Role: "cliente"}

	data, _, err := r.client.From("Usuarios").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return nil, gatewayErr("insert user", err)
	}

	created, err := firstUser(data)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, gatewayErr("insert user", fmt.Errorf("empty insert response"))
	}
	return created, nil
}

func (r *SupabaseRepository) GetUserSettings(ctx context.Context, userID int64) (*model.UserSettings, error) {
	data, _, err := r.client.From("Usuarios").
		Select("meta_ahorro, tasa_ahorro", "", false).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return nil, gatewayErr("select user settings", err)
	}

	var rows []model.UserSettings
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, gatewayErr("parse user settings", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *SupabaseRepository) UpdateSavingsGoal(ctx context.Context, userID int64, goal decimal.Decimal) error {
	_, _, err := r.client.From("Usuarios").
		Update(map[string]interface{}{"meta_ahorro": goal}, "", "").
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return gatewayErr("update savings goal", err)
	}
	return nil
}

func (r *SupabaseRepository) UpdateSavingsRate(ctx context.Context, userID int64, rate int) error {
	_, _, err := r.client.From("Usuarios").
		Update(map[string]interface{}{"tasa_ahorro": rate}, "", "").
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return gatewayErr("update savings rate", err)
	}
	return nil
}

func firstUser(data []byte) (*model.User, error) {
	var rows []model.User
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, gatewayErr("parse user", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// --- Категории ---

type categoryRow struct {
	Name    string `json:"nombre_tipo"`
	OwnerID *int64 `json:"id_usuario"`

	IncomeID  int64 `json:"id_tipo_ingreso,omitempty"`
	ExpenseID int64 `json:"id_tipo_gasto,omitempty"`
}

func (row categoryRow) toModel(kind model.Kind) model.Category {
	id := row.IncomeID
	if kind == model.KindExpense {
		id = row.ExpenseID
	}
	return model.Category{
		ID:      id,
		Name:    row.Name,
		OwnerID: row.OwnerID,
		Kind:    kind,
	}
}

func (r *SupabaseRepository) GetCategories(ctx context.Context, kind model.Kind, userID int64) ([]model.Category, error) {
	table, _ := categoryTable(kind)

	// Общие категории (id_usuario is null) плюс собственные пользователя
	data, _, err := r.client.From(table).
		Select("*", "", false).
		Or(fmt.Sprintf("id_usuario.is.null,id_usuario.eq.%d", userID), "").
		Order("nombre_tipo", nil).
		Execute()
	if err != nil {
		return nil, gatewayErr("select categories", err)
	}

	var rows []categoryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, gatewayErr("parse categories", err)
	}

	categories := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toModel(kind))
	}
	return categories, nil
}

func (r *SupabaseRepository) CreateCategory(ctx context.Context, kind model.Kind, userID int64, name string) (*model.Category, error) {
	table, _ := categoryTable(kind)

	row := struct {
		Name    string `json:"nombre_tipo"`
		OwnerID int64  `json:"id_usuario"`
	}{Name: name, OwnerID: userID}

	data, _, err := r.client.From(table).Insert(row, false, "", "", "").Execute()
	if err != nil {
		return nil, gatewayErr("insert category", err)
	}

	// Парсим ответ для получения присвоенного базой ID
	var created []categoryRow
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, gatewayErr("parse created category", err)
	}
	if len(created) == 0 {
		return nil, gatewayErr("insert category", fmt.Errorf("empty insert response"))
	}
	category := created[0].toModel(kind)
	return &category, nil
}

func (r *SupabaseRepository) DeleteCategory(ctx context.Context, kind model.Kind, id, userID int64) error {
	table, idCol := categoryTable(kind)

	_, _, err := r.client.From(table).
		Delete("", "").
		Eq(idCol, strconv.FormatInt(id, 10)).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return gatewayErr("delete category", err)
	}
	return nil
}

// --- Операции ---

type recordRow struct {
	Amount      decimal.Decimal `json:"monto"`
	Month       int             `json:"mes"`
	Year        int             `json:"anio"`
	Description string          `json:"descripcion"`
	IsRecurring bool            `json:"es_recurrente"`
	Recurrence  string          `json:"tipo_recurrencia"`

	IncomeID      int64           `json:"id_ingreso,omitempty"`
	ExpenseID     int64           `json:"id_gasto,omitempty"`
	IncomeCatID   int64           `json:"id_tipo_ingreso,omitempty"`
	ExpenseCatID  int64           `json:"id_tipo_gasto,omitempty"`
	IncomeDate    string          `json:"fecha_ingreso,omitempty"`
	ExpenseDate   string          `json:"fecha_gasto,omitempty"`
	IncomeCatRef  *joinedCategory `json:"TiposIngreso,omitempty"`
	ExpenseCatRef *joinedCategory `json:"TiposGasto,omitempty"`
}

type joinedCategory struct {
	Name string `json:"nombre_tipo"`
}

func (row recordRow) toModel(kind model.Kind) (model.Record, error) {
	rec := model.Record{
		Amount:      row.Amount,
		Description: row.Description,
		Month:       row.Month,
		Year:        row.Year,
		IsRecurring: row.IsRecurring,
		Recurrence:  model.Recurrence(row.Recurrence),
	}

	rawDate := row.IncomeDate
	if kind == model.KindIncome {
		rec.ID = row.IncomeID
		rec.CategoryID = row.IncomeCatID
		if row.IncomeCatRef != nil {
			rec.Category = row.IncomeCatRef.Name
		}
	} else {
		rec.ID = row.ExpenseID
		rec.CategoryID = row.ExpenseCatID
		rawDate = row.ExpenseDate
		if row.ExpenseCatRef != nil {
			rec.Category = row.ExpenseCatRef.Name
		}
	}

	if rawDate != "" {
		date, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return rec, fmt.Errorf("parse record date %q: %w", rawDate, err)
		}
		rec.Date = date
	}
	return rec, nil
}

func (r *SupabaseRepository) GetRecords(ctx context.Context, kind model.Kind, userID int64, month, year int) ([]model.Record, error) {
	table, _, _, dateCol, catTable := recordTable(kind)

	data, _, err := r.client.From(table).
		Select(fmt.Sprintf("*, %s(nombre_tipo)", catTable), "", false).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Eq("mes", strconv.Itoa(month)).
		Eq("anio", strconv.Itoa(year)).
		Order(dateCol+".desc", nil).
		Execute()
	if err != nil {
		return nil, gatewayErr("select records", err)
	}

	return parseRecords(data, kind)
}

func parseRecords(data []byte, kind model.Kind) ([]model.Record, error) {
	var rows []recordRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, gatewayErr("parse records", err)
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel(kind)
		if err != nil {
			return nil, gatewayErr("parse records", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *SupabaseRepository) CreateRecord(ctx context.Context, kind model.Kind, userID int64, record *model.Record) error {
	table, _, catCol, dateCol, _ := recordTable(kind)

	row := map[string]interface{}{
		"id_usuario":    userID,
		catCol:          record.CategoryID,
		"monto":         record.Amount,
		"mes":           record.Month,
		"anio":          record.Year,
		dateCol:         record.Date.Format(dateLayout),
		"descripcion":   record.Description,
		"es_recurrente": record.IsRecurring,
	}
	if record.IsRecurring {
		row["tipo_recurrencia"] = string(record.Recurrence)
	} else {
		row["tipo_recurrencia"] = nil
	}

	data, _, err := r.client.From(table).Insert(row, false, "", "", "").Execute()
	if err != nil {
		return gatewayErr("insert record", err)
	}

	created, err := parseRecords(data, kind)
	if err != nil {
		return err
	}
	if len(created) > 0 {
		record.ID = created[0].ID
	}
	return nil
}

func (r *SupabaseRepository) DeleteRecord(ctx context.Context, kind model.Kind, id, userID int64) error {
	table, idCol, _, _, _ := recordTable(kind)

	_, _, err := r.client.From(table).
		Delete("", "").
		Eq(idCol, strconv.FormatInt(id, 10)).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return gatewayErr("delete record", err)
	}
	return nil
}

func (r *SupabaseRepository) SumRecords(ctx context.Context, kind model.Kind, userID int64) (decimal.Decimal, error) {
	table, _, _, _, _ := recordTable(kind)

	data, _, err := r.client.From(table).
		Select("monto", "", false).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return decimal.Zero, gatewayErr("select record amounts", err)
	}

	var rows []struct {
		Amount decimal.Decimal `json:"monto"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return decimal.Zero, gatewayErr("parse record amounts", err)
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total, nil
}

// --- Бюджеты ---

type budgetRow struct {
	ID         int64           `json:"id_presupuesto"`
	CategoryID int64           `json:"id_tipo_gasto"`
	Amount     decimal.Decimal `json:"monto"`
	Month      int             `json:"mes"`
	Year       int             `json:"anio"`
	CatRef     *joinedCategory `json:"TiposGasto,omitempty"`
}

func (row budgetRow) toModel() model.Budget {
	b := model.Budget{
		ID:         row.ID,
		CategoryID: row.CategoryID,
		Month:      row.Month,
		Year:       row.Year,
		Limit:      row.Amount,
	}
	if row.CatRef != nil {
		b.Category = row.CatRef.Name
	}
	return b
}

func (r *SupabaseRepository) GetBudgets(ctx context.Context, userID int64, month, year int) ([]model.Budget, error) {
	data, _, err := r.client.From("Presupuestos").
		Select("*, TiposGasto(nombre_tipo)", "", false).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Eq("mes", strconv.Itoa(month)).
		Eq("anio", strconv.Itoa(year)).
		Execute()
	if err != nil {
		return nil, gatewayErr("select budgets", err)
	}

	var rows []budgetRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, gatewayErr("parse budgets", err)
	}

	budgets := make([]model.Budget, 0, len(rows))
	for _, row := range rows {
		budgets = append(budgets, row.toModel())
	}
	return budgets, nil
}

func (r *SupabaseRepository) FindBudget(ctx context.Context, userID, categoryID int64, month, year int) (*model.Budget, error) {
	data, _, err := r.client.From("Presupuestos").
		Select("*", "", false).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		Eq("id_tipo_gasto", strconv.FormatInt(categoryID, 10)).
		Eq("mes", strconv.Itoa(month)).
		Eq("anio", strconv.Itoa(year)).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, gatewayErr("select budget", err)
	}

	var rows []budgetRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, gatewayErr("parse budget", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	budget := rows[0].toModel()
	return &budget, nil
}

func (r *SupabaseRepository) CreateBudget(ctx context.Context, userID, categoryID int64, limit decimal.Decimal, month, year int) error {
	row := map[string]interface{}{
		"id_usuario":    userID,
		"id_tipo_gasto": categoryID,
		"monto":         limit,
		"mes":           month,
		"anio":          year,
	}

	_, _, err := r.client.From("Presupuestos").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return gatewayErr("insert budget", err)
	}
	return nil
}

func (r *SupabaseRepository) UpdateBudgetLimit(ctx context.Context, budgetID int64, limit decimal.Decimal) error {
	_, _, err := r.client.From("Presupuestos").
		Update(map[string]interface{}{"monto": limit}, "", "").
		Eq("id_presupuesto", strconv.FormatInt(budgetID, 10)).
		Execute()
	if err != nil {
		return gatewayErr("update budget limit", err)
	}
	return nil
}
