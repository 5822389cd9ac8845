package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/finance_desktop/internal/model"
)

// Repository описывает шлюз к удаленному хранилищу. Все операции
// сводятся к простым выборкам, вставкам, обновлениям и удалениям;
// база данных находится на стороне хостинга и здесь непрозрачна.
type Repository interface {
	// Пользователи
	GetUserByCredentials(ctx context.Context, email, password string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	CreateUser(ctx context.Context, name, email, password string) (*model.User, error)
	GetUserSettings(ctx context.Context, userID int64) (*model.UserSettings, error)
	UpdateSavingsGoal(ctx context.Context, userID int64, goal decimal.Decimal) error
	UpdateSavingsRate(ctx context.Context, userID int64, rate int) error

	// Категории: общие (id_usuario is null) плюс собственные пользователя
	GetCategories(ctx context.Context, kind model.Kind, userID int64) ([]model.Category, error)
	CreateCategory(ctx context.Context, kind model.Kind, userID int64, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, kind model.Kind, id, userID int64) error

	// Операции (доходы и расходы)
	GetRecords(ctx context.Context, kind model.Kind, userID int64, month, year int) ([]model.Record, error)
	CreateRecord(ctx context.Context, kind model.Kind, userID int64, record *model.Record) error
	DeleteRecord(ctx context.Context, kind model.Kind, id, userID int64) error
	SumRecords(ctx context.Context, kind model.Kind, userID int64) (decimal.Decimal, error)

	// Бюджеты
	GetBudgets(ctx context.Context, userID int64, month, year int) ([]model.Budget, error)
	FindBudget(ctx context.Context, userID, categoryID int64, month, year int) (*model.Budget, error)
	CreateBudget(ctx context.Context, userID, categoryID int64, limit decimal.Decimal, month, year int) error
	UpdateBudgetLimit(ctx context.Context, budgetID int64, limit decimal.Decimal) error
}

// GatewayError - ошибка обращения к удаленному хранилищу
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func gatewayErr(op string, err error) error {
	return &GatewayError{Op: op, Err: err}
}
