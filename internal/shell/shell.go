package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivanoskov/finance_desktop/internal/assistant"
	"github.com/ivanoskov/finance_desktop/internal/auth"
	"github.com/ivanoskov/finance_desktop/internal/charts"
	"github.com/ivanoskov/finance_desktop/internal/finance"
	"github.com/ivanoskov/finance_desktop/internal/model"
)

// Shell - тонкий консольный слой представления: разбирает строку,
// вызывает синхронизатор и печатает результат. Вся логика данных живет
// уровнем ниже.
type Shell struct {
	auth         *auth.Manager
	sync         *finance.Synchronizer
	charts       *charts.ChartGenerator
	newAssistant func(userID int64) *assistant.Assistant

	in  io.Reader
	out io.Writer

	user      *model.User
	assistant *assistant.Assistant
}

func NewShell(authManager *auth.Manager, sync *finance.Synchronizer, gen *charts.ChartGenerator, newAssistant func(userID int64) *assistant.Assistant) *Shell {
	return &Shell{
		auth:         authManager,
		sync:         sync,
		charts:       gen,
		newAssistant: newAssistant,
		in:           os.Stdin,
		out:          os.Stdout,
	}
}

func (s *Shell) Run(ctx context.Context) error {
	// Восстанавливаем сессию с прошлого запуска
	user, err := s.auth.Restore(ctx)
	if err != nil {
		s.printf("No se pudo restaurar la sesión: %v\n", err)
	} else if user != nil {
		s.bindUser(ctx, user)
		s.printf("Sesión restaurada: %s <%s>\n", user.Name, user.Email)
	} else {
		s.printf("Bienvenido a Finanzas Pro. Usa \"entrar\" o \"registrar\" para comenzar.\n")
	}

	scanner := bufio.NewScanner(s.in)
	for {
		s.printf("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "salir" {
			return nil
		}

		s.handleLine(ctx, line)
	}
}

func (s *Shell) handleLine(ctx context.Context, line string) {
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "ayuda":
		s.printHelp()
	case "entrar":
		s.handleLogin(ctx, args)
	case "registrar":
		s.handleRegister(ctx, args)
	case "cerrar":
		s.handleLogout()
	case "resumen":
		s.handleSummary()
	case "ingresos":
		s.handleList(model.KindIncome)
	case "gastos":
		s.handleList(model.KindExpense)
	case "ingreso":
		s.handleAdd(ctx, model.KindIncome, args)
	case "gasto":
		s.handleAdd(ctx, model.KindExpense, args)
	case "eliminar-ingreso":
		s.handleDelete(ctx, model.KindIncome, args)
	case "eliminar-gasto":
		s.handleDelete(ctx, model.KindExpense, args)
	case "categorias":
		s.handleCategories()
	case "categoria":
		s.handleAddCategory(ctx, args)
	case "eliminar-categoria":
		s.handleDeleteCategory(ctx, args)
	case "presupuesto":
		s.handleSetBudget(ctx, args)
	case "meta":
		s.handleSavingsGoal(ctx, args)
	case "tasa":
		s.handleSavingsRate(ctx, args)
	case "chat":
		s.handleChat(ctx, strings.TrimSpace(strings.TrimPrefix(line, "chat")))
	case "graficos":
		s.handleCharts(args)
	case "refrescar":
		s.sync.Reload(ctx)
		s.printSnapshotStatus()
	default:
		s.printf("Comando desconocido: %s (usa \"ayuda\")\n", cmd)
	}
}

func (s *Shell) printHelp() {
	s.printf(`Comandos:
  entrar <correo> <contraseña>            iniciar sesión
  registrar <nombre> <correo> <contraseña> crear cuenta
  cerrar                                  cerrar sesión
  resumen                                 totales y presupuestos del mes
  ingresos | gastos                       listar operaciones del mes
  ingreso <monto> <id_categoria> [descripción...]
  gasto <monto> <id_categoria> [descripción...]
  eliminar-ingreso <id> | eliminar-gasto <id>
  categorias                              listar categorías
  categoria <ingreso|gasto> <nombre...>   crear categoría propia
  eliminar-categoria <ingreso|gasto> <id>
  presupuesto <id_categoria> <límite>     fijar límite del mes
  meta <monto> | tasa <porcentaje>        ajustes de ahorro
  chat <texto>                            preguntar al asistente
  graficos <prefijo>                      exportar PNG del mes
  refrescar | salir
`)
}

func (s *Shell) handleLogin(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.printf("Uso: entrar <correo> <contraseña>\n")
		return
	}

	user, err := s.auth.Login(ctx, args[0], args[1])
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.printf("Correo o contraseña incorrectos\n")
		return
	}
	if err != nil {
		s.printf("Error al iniciar sesión: %v\n", err)
		return
	}

	s.bindUser(ctx, user)
	s.printf("Hola, %s\n", user.Name)
	s.printSnapshotStatus()
}

func (s *Shell) handleRegister(ctx context.Context, args []string) {
	if len(args) != 3 {
		s.printf("Uso: registrar <nombre> <correo> <contraseña>\n")
		return
	}

	user, err := s.auth.Register(ctx, args[0], args[1], args[2])
	if errors.Is(err, auth.ErrEmailTaken) {
		s.printf("Este correo ya está registrado\n")
		return
	}
	if err != nil {
		s.printf("Error al registrar usuario: %v\n", err)
		return
	}

	s.bindUser(ctx, user)
	s.printf("Cuenta creada. Hola, %s\n", user.Name)
}

func (s *Shell) handleLogout() {
	if err := s.auth.Logout(); err != nil {
		s.printf("Error al cerrar sesión: %v\n", err)
		return
	}
	s.user = nil
	s.assistant = nil
	s.sync.Unbind()
	s.printf("Sesión cerrada\n")
}

func (s *Shell) bindUser(ctx context.Context, user *model.User) {
	s.user = user
	s.sync.Bind(ctx, user.ID)
	s.assistant = s.newAssistant(user.ID)
}

func (s *Shell) handleSummary() {
	snap := s.sync.Snapshot()
	if snap.Err != nil {
		s.printf("Error al cargar datos: %v\n", snap.Err)
	}

	s.printf("Ingresos del mes: S/ %s\n", snap.TotalIncome().StringFixed(2))
	s.printf("Gastos del mes:   S/ %s\n", snap.TotalExpenses().StringFixed(2))
	s.printf("Balance:          S/ %s\n", snap.Balance().StringFixed(2))
	s.printf("Meta de ahorro:   S/ %s (tasa %d%%)\n", snap.SavingsGoal.StringFixed(2), snap.SavingsRate)

	if len(snap.Budgets) > 0 {
		s.printf("Presupuestos:\n")
		for _, b := range snap.Budgets {
			s.printf("  [%d] %s: S/ %s de S/ %s (quedan S/ %s)\n",
				b.ID, b.Category, b.Spent.StringFixed(2), b.Limit.StringFixed(2), b.Remaining().StringFixed(2))
		}
	}
}

func (s *Shell) handleList(kind model.Kind) {
	snap := s.sync.Snapshot()
	records := snap.Incomes
	if kind == model.KindExpense {
		records = snap.Expenses
	}

	if len(records) == 0 {
		s.printf("No hay operaciones este mes\n")
		return
	}
	for _, r := range records {
		recurring := ""
		if r.IsRecurring {
			recurring = fmt.Sprintf(" (recurrente, %s)", r.Recurrence)
		}
		s.printf("  [%d] %s  S/ %s  %s  %s%s\n",
			r.ID, r.Date.Format("2006-01-02"), r.Amount.StringFixed(2), r.Category, r.Description, recurring)
	}
}

func (s *Shell) handleAdd(ctx context.Context, kind model.Kind, args []string) {
	if len(args) < 2 {
		s.printf("Uso: %s <monto> <id_categoria> [descripción...]\n", commandName(kind))
		return
	}

	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		s.printf("Monto inválido: %s\n", args[0])
		return
	}
	categoryID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		s.printf("Categoría inválida: %s\n", args[1])
		return
	}

	input := finance.RecordInput{
		Amount:      amount,
		Description: strings.Join(args[2:], " "),
		Date:        time.Now(),
		CategoryID:  categoryID,
	}

	if kind == model.KindIncome {
		err = s.sync.AddIncome(ctx, input)
	} else {
		err = s.sync.AddExpense(ctx, input)
	}
	if err != nil {
		s.printf("No se pudo guardar: %v\n", err)
		return
	}
	s.printf("Guardado ✅\n")
	s.printSnapshotStatus()
}

func (s *Shell) handleDelete(ctx context.Context, kind model.Kind, args []string) {
	if len(args) != 1 {
		s.printf("Uso: eliminar-%s <id>\n", commandName(kind))
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.printf("Identificador inválido: %s\n", args[0])
		return
	}

	if kind == model.KindIncome {
		err = s.sync.DeleteIncome(ctx, id)
	} else {
		err = s.sync.DeleteExpense(ctx, id)
	}
	if err != nil {
		s.printf("No se pudo eliminar: %v\n", err)
		return
	}
	s.printf("Eliminado\n")
}

func (s *Shell) handleCategories() {
	snap := s.sync.Snapshot()

	s.printf("Categorías de ingreso:\n")
	printCategoryList(s, snap.IncomeCategories)
	s.printf("Categorías de gasto:\n")
	printCategoryList(s, snap.ExpenseCategories)
}

func printCategoryList(s *Shell, categories []model.Category) {
	for _, c := range categories {
		scope := "propia"
		if c.Global() {
			scope = "global"
		}
		s.printf("  [%d] %s (%s)\n", c.ID, c.Name, scope)
	}
}

func (s *Shell) handleAddCategory(ctx context.Context, args []string) {
	kind, rest, ok := parseKind(args)
	if !ok || len(rest) == 0 {
		s.printf("Uso: categoria <ingreso|gasto> <nombre...>\n")
		return
	}

	created, err := s.sync.AddCategory(ctx, kind, strings.Join(rest, " "))
	if err != nil {
		s.printf("No se pudo crear la categoría: %v\n", err)
		return
	}
	s.printf("Categoría creada: [%d] %s\n", created.ID, created.Name)
}

func (s *Shell) handleDeleteCategory(ctx context.Context, args []string) {
	kind, rest, ok := parseKind(args)
	if !ok || len(rest) != 1 {
		s.printf("Uso: eliminar-categoria <ingreso|gasto> <id>\n")
		return
	}
	id, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		s.printf("Identificador inválido: %s\n", rest[0])
		return
	}

	if err := s.sync.DeleteCategory(ctx, kind, id); err != nil {
		s.printf("No se pudo eliminar la categoría: %v\n", err)
		return
	}
	s.printf("Categoría eliminada\n")
}

func (s *Shell) handleSetBudget(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.printf("Uso: presupuesto <id_categoria> <límite>\n")
		return
	}
	categoryID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.printf("Categoría inválida: %s\n", args[0])
		return
	}
	limit, err := decimal.NewFromString(args[1])
	if err != nil {
		s.printf("Límite inválido: %s\n", args[1])
		return
	}

	if err := s.sync.SetBudget(ctx, categoryID, limit); err != nil {
		s.printf("No se pudo fijar el presupuesto: %v\n", err)
		return
	}
	s.printf("Presupuesto guardado\n")
}

func (s *Shell) handleSavingsGoal(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.printf("Uso: meta <monto>\n")
		return
	}
	goal, err := decimal.NewFromString(args[0])
	if err != nil {
		s.printf("Monto inválido: %s\n", args[0])
		return
	}

	if err := s.sync.SetSavingsGoal(ctx, goal); err != nil {
		s.printf("No se pudo guardar la meta: %v\n", err)
		return
	}
	s.printf("Meta de ahorro: S/ %s\n", goal.StringFixed(2))
}

func (s *Shell) handleSavingsRate(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.printf("Uso: tasa <porcentaje>\n")
		return
	}
	rate, err := strconv.Atoi(args[0])
	if err != nil {
		s.printf("Porcentaje inválido: %s\n", args[0])
		return
	}

	if err := s.sync.SetSavingsRate(ctx, rate); err != nil {
		s.printf("No se pudo guardar la tasa: %v\n", err)
		return
	}
	s.printf("Tasa de ahorro: %d%%\n", rate)
}

func (s *Shell) handleChat(ctx context.Context, text string) {
	if s.assistant == nil {
		s.printf("Inicia sesión primero\n")
		return
	}
	if text == "" {
		s.printf("Uso: chat <texto>\n")
		return
	}

	reply := s.assistant.Send(ctx, text)
	s.printf("FinanzasAI: %s\n", reply.Content)
}

func (s *Shell) handleCharts(args []string) {
	if len(args) != 1 {
		s.printf("Uso: graficos <prefijo>\n")
		return
	}

	snap := s.sync.Snapshot()
	exports := []struct {
		suffix string
		render func(*finance.Snapshot) ([]byte, error)
	}{
		{"gastos.png", s.charts.ExpensePie},
		{"presupuestos.png", s.charts.BudgetBars},
	}

	for _, e := range exports {
		data, err := e.render(&snap)
		if err != nil {
			s.printf("No se pudo generar %s: %v\n", e.suffix, err)
			continue
		}
		if data == nil {
			continue
		}
		path := args[0] + "-" + e.suffix
		if err := os.WriteFile(path, data, 0o644); err != nil {
			s.printf("No se pudo escribir %s: %v\n", path, err)
			continue
		}
		s.printf("Exportado %s\n", path)
	}
}

func (s *Shell) printSnapshotStatus() {
	snap := s.sync.Snapshot()
	if snap.Err != nil {
		s.printf("Error al cargar datos: %v\n", snap.Err)
		return
	}
	s.printf("Datos al día: %d ingresos, %d gastos, %d presupuestos\n",
		len(snap.Incomes), len(snap.Expenses), len(snap.Budgets))
}

func parseKind(args []string) (model.Kind, []string, bool) {
	if len(args) == 0 {
		return "", nil, false
	}
	switch args[0] {
	case "ingreso":
		return model.KindIncome, args[1:], true
	case "gasto":
		return model.KindExpense, args[1:], true
	}
	return "", nil, false
}

func commandName(kind model.Kind) string {
	if kind == model.KindIncome {
		return "ingreso"
	}
	return "gasto"
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
