package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivanoskov/finance_desktop/internal/model"
	"github.com/ivanoskov/finance_desktop/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserRepository - часть шлюза, нужная менеджеру аутентификации
type UserRepository interface {
	GetUserByCredentials(ctx context.Context, email, password string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	CreateUser(ctx context.Context, name, email, password string) (*model.User, error)
}

// Manager аутентифицирует и регистрирует пользователей и владеет
// жизненным циклом локальной сессии.
type Manager struct {
	repo     UserRepository
	sessions *session.Store
}

func NewManager(repo UserRepository, sessions *session.Store) *Manager {
	return &Manager{
		repo:     repo,
		sessions: sessions,
	}
}

// Login проверяет учетные данные сравнением на стороне шлюза.
// Пароли в базе хранятся открытым текстом (унаследованная схема).
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := m.repo.GetUserByCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := m.sessions.Save(user.ID); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return user, nil
}

func (m *Manager) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	existing, err := m.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	user, err := m.repo.CreateUser(ctx, name, email, password)
	if err != nil {
		return nil, err
	}

	if err := m.sessions.Save(user.ID); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return user, nil
}

// Restore восстанавливает пользователя из сохраненной сессии.
// Возвращает (nil, nil), если сессии нет. Висячий идентификатор,
// которого больше нет в базе, стирается.
func (m *Manager) Restore(ctx context.Context) (*model.User, error) {
	userID, ok, err := m.sessions.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	user, err := m.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if err := m.sessions.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return user, nil
}

func (m *Manager) Logout() error {
	return m.sessions.Clear()
}
