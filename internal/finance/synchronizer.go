package finance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/finance_desktop/internal/model"
)

var (
	// ErrUnbound возвращается мутациями, когда пользователь не привязан
	ErrUnbound = errors.New("no user bound")

	// ErrNegativeAmount возвращается при попытке записать отрицательную сумму
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Gateway - часть шлюза, нужная синхронизатору
type Gateway interface {
	GetCategories(ctx context.Context, kind model.Kind, userID int64) ([]model.Category, error)
	CreateCategory(ctx context.Context, kind model.Kind, userID int64, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, kind model.Kind, id, userID int64) error

	GetRecords(ctx context.Context, kind model.Kind, userID int64, month, year int) ([]model.Record, error)
	CreateRecord(ctx context.Context, kind model.Kind, userID int64, record *model.Record) error
	DeleteRecord(ctx context.Context, kind model.Kind, id, userID int64) error

	GetBudgets(ctx context.Context, userID int64, month, year int) ([]model.Budget, error)
	FindBudget(ctx context.Context, userID, categoryID int64, month, year int) (*model.Budget, error)
	CreateBudget(ctx context.Context, userID, categoryID int64, limit decimal.Decimal, month, year int) error
	UpdateBudgetLimit(ctx context.Context, budgetID int64, limit decimal.Decimal) error

	GetUserSettings(ctx context.Context, userID int64) (*model.UserSettings, error)
	UpdateSavingsGoal(ctx context.Context, userID int64, goal decimal.Decimal) error
	UpdateSavingsRate(ctx context.Context, userID int64, rate int) error
}

// RecordInput - данные новой операции от слоя представления
type RecordInput struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	CategoryID  int64
	IsRecurring bool
	Recurrence  model.Recurrence
}

// Synchronizer владеет снимком данных одного пользователя. Каждая мутация
// пишет через шлюз и затем перечитывает снимок целиком; инкрементальных
// правок кэша нет, кроме настроек сбережений.
type Synchronizer struct {
	repo  Gateway
	nowFn func() time.Time

	mu       sync.Mutex
	gen      uint64
	userID   int64
	snapshot Snapshot
}

func NewSynchronizer(repo Gateway) *Synchronizer {
	return &Synchronizer{
		repo:  repo,
		nowFn: time.Now,
		snapshot: Snapshot{
			Loading:     true,
			SavingsRate: model.DefaultSavingsRate,
		},
	}
}

// Snapshot возвращает копию текущего снимка.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Bind привязывает синхронизатор к пользователю и запускает ровно одну
// перезагрузку. Прежний снимок отбрасывается без слияния. Поколение
// увеличивается, поэтому результат перезагрузки, начатой до перепривязки,
// будет отброшен при завершении.
func (s *Synchronizer) Bind(ctx context.Context, userID int64) {
	s.mu.Lock()
	s.gen++
	s.userID = userID
	s.snapshot = Snapshot{
		UserID:      userID,
		Loading:     true,
		SavingsRate: model.DefaultSavingsRate,
	}
	s.mu.Unlock()

	s.Reload(ctx)
}

// Unbind сбрасывает привязку и снимок (завершение сессии).
func (s *Synchronizer) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.userID = 0
	s.snapshot = Snapshot{
		Loading:     true,
		SavingsRate: model.DefaultSavingsRate,
	}
}

// Reload перечитывает снимок целиком: пять выборок по пользователю и
// текущему месяцу плюс настройки сбережений. Без привязанного пользователя
// ничего не делает. Ошибка чтения не пробрасывается, а записывается в
// Snapshot.Err; поля данных при этом остаются от прежнего снимка.
func (s *Synchronizer) Reload(ctx context.Context) {
	s.mu.Lock()
	userID := s.userID
	gen := s.gen
	if userID == 0 {
		s.mu.Unlock()
		return
	}
	s.snapshot.Loading = true
	s.snapshot.Err = nil
	s.mu.Unlock()

	// Месяц и год берутся на момент вызова, а не создания синхронизатора,
	// чтобы перезагрузка после смены месяца видела новый месяц
	now := s.nowFn()
	next, err := s.load(ctx, userID, int(now.Month()), now.Year())

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// устаревшая перезагрузка: привязка сменилась, результат отбрасываем
		return
	}
	if err != nil {
		s.snapshot.Loading = false
		s.snapshot.Err = err
		return
	}
	s.snapshot = *next
}

func (s *Synchronizer) load(ctx context.Context, userID int64, month, year int) (*Snapshot, error) {
	incomeCategories, err := s.repo.GetCategories(ctx, model.KindIncome, userID)
	if err != nil {
		return nil, err
	}

	expenseCategories, err := s.repo.GetCategories(ctx, model.KindExpense, userID)
	if err != nil {
		return nil, err
	}

	incomes, err := s.repo.GetRecords(ctx, model.KindIncome, userID, month, year)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.GetRecords(ctx, model.KindExpense, userID, month, year)
	if err != nil {
		return nil, err
	}

	budgets, err := s.repo.GetBudgets(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	settings, err := s.repo.GetUserSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Потрачено по категориям считается заново из расходов этой же
	// загрузки и нигде не сохраняется
	spent := make(map[int64]decimal.Decimal)
	for _, e := range expenses {
		spent[e.CategoryID] = spent[e.CategoryID].Add(e.Amount)
	}
	for i := range budgets {
		budgets[i].Spent = spent[budgets[i].CategoryID]
	}

	next := &Snapshot{
		UserID:            userID,
		Incomes:           incomes,
		Expenses:          expenses,
		IncomeCategories:  incomeCategories,
		ExpenseCategories: expenseCategories,
		Budgets:           budgets,
		SavingsGoal:       decimal.Zero,
		SavingsRate:       model.DefaultSavingsRate,
		Loading:           false,
	}
	if settings != nil {
		next.SavingsGoal = settings.SavingsGoal
		next.SavingsRate = settings.SavingsRate
	}
	return next, nil
}

func (s *Synchronizer) boundUser() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == 0 {
		return 0, ErrUnbound
	}
	return s.userID, nil
}

// AddIncome записывает доход и перечитывает снимок.
func (s *Synchronizer) AddIncome(ctx context.Context, in RecordInput) error {
	return s.addRecord(ctx, model.KindIncome, in)
}

// AddExpense записывает расход и перечитывает снимок.
func (s *Synchronizer) AddExpense(ctx context.Context, in RecordInput) error {
	return s.addRecord(ctx, model.KindExpense, in)
}

func (s *Synchronizer) addRecord(ctx context.Context, kind model.Kind, in RecordInput) error {
	userID, err := s.boundUser()
	if err != nil {
		return err
	}
	if in.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	record := &model.Record{
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		CategoryID:  in.CategoryID,
		// Месяц и год выводятся из даты операции один раз, при записи
		Month:       int(in.Date.Month()),
		Year:        in.Date.Year(),
		IsRecurring: in.IsRecurring,
		Recurrence:  in.Recurrence,
	}

	if err := s.repo.CreateRecord(ctx, kind, userID, record); err != nil {
		return err
	}

	s.Reload(ctx)
	return nil
}

// DeleteIncome удаляет доход по идентификатору в рамках привязанного
// пользователя. Чужой идентификатор молча не трогает ни одной строки.
func (s *Synchronizer) DeleteIncome(ctx context.Context, id int64) error {
	return s.deleteRecord(ctx, model.KindIncome, id)
}

// DeleteExpense - то же для расхода.
func (s *Synchronizer) DeleteExpense(ctx context.Context, id int64) error {
	return s.deleteRecord(ctx, model.KindExpense, id)
}

func (s *Synchronizer) deleteRecord(ctx context.Context, kind model.Kind, id int64) error {
	userID, err := s.boundUser()
	if err != nil {
		return err
	}

	if err := s.repo.DeleteRecord(ctx, kind, id, userID); err != nil {
		return err
	}

	s.Reload(ctx)
	return nil
}

// AddCategory создает категорию, принадлежащую привязанному пользователю,
// и возвращает её сразу, не дожидаясь перезагрузки.
func (s *Synchronizer) AddCategory(ctx context.Context, kind model.Kind, name string) (*model.Category, error) {
	userID, err := s.boundUser()
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateCategory(ctx, kind, userID, name)
	if err != nil {
		return nil, err
	}

	s.Reload(ctx)
	return created, nil
}

// DeleteCategory удаляет категорию, только если она принадлежит
// привязанному пользователю (общие категории удалить нельзя).
func (s *Synchronizer) DeleteCategory(ctx context.Context, kind model.Kind, id int64) error {
	userID, err := s.boundUser()
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCategory(ctx, kind, id, userID); err != nil {
		return err
	}

	s.Reload(ctx)
	return nil
}

// SetBudget устанавливает месячный лимит по категории расходов: обновляет
// существующий бюджет текущего месяца или создает новый. Проверка и запись
// не атомарны: параллельные вызовы по одной категории могут оставить в
// базе две строки бюджета.
func (s *Synchronizer) SetBudget(ctx context.Context, categoryID int64, limit decimal.Decimal) error {
	userID, err := s.boundUser()
	if err != nil {
		return err
	}
	if limit.IsNegative() {
		return ErrNegativeAmount
	}

	now := s.nowFn()
	month, year := int(now.Month()), now.Year()

	existing, err := s.repo.FindBudget(ctx, userID, categoryID, month, year)
	if err != nil {
		return err
	}

	if existing != nil {
		err = s.repo.UpdateBudgetLimit(ctx, existing.ID, limit)
	} else {
		err = s.repo.CreateBudget(ctx, userID, categoryID, limit, month, year)
	}
	if err != nil {
		return err
	}

	s.Reload(ctx)
	return nil
}

// SetSavingsGoal записывает цель сбережений и правит снимок на месте.
// Единственное место (вместе с SetSavingsRate), где снимок обновляется
// без полной перезагрузки.
func (s *Synchronizer) SetSavingsGoal(ctx context.Context, goal decimal.Decimal) error {
	userID, err := s.boundUser()
	if err != nil {
		return err
	}
	if goal.IsNegative() {
		return ErrNegativeAmount
	}

	if err := s.repo.UpdateSavingsGoal(ctx, userID, goal); err != nil {
		return err
	}

	s.mu.Lock()
	if s.userID == userID {
		s.snapshot.SavingsGoal = goal
	}
	s.mu.Unlock()
	return nil
}

// SetSavingsRate записывает процент сбережений (0-100) и правит снимок на месте.
func (s *Synchronizer) SetSavingsRate(ctx context.Context, rate int) error {
	userID, err := s.boundUser()
	if err != nil {
		return err
	}
	if rate < 0 || rate > 100 {
		return errors.New("savings rate must be between 0 and 100")
	}

	if err := s.repo.UpdateSavingsRate(ctx, userID, rate); err != nil {
		return err
	}

	s.mu.Lock()
	if s.userID == userID {
		s.snapshot.SavingsRate = rate
	}
	s.mu.Unlock()
	return nil
}
