package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ivanoskov/finance_desktop/internal/model"
	"github.com/ivanoskov/finance_desktop/internal/session"
)

type fakeUserRepository struct {
	users  map[string]*model.User // по почте
	nextID int64
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepository) GetUserByCredentials(_ context.Context, email, password string) (*model.User, error) {
	user, ok := f.users[email]
	if !ok || user.Password != password {
		return nil, nil
	}
	return user, nil
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return f.users[email], nil
}

func (f *fakeUserRepository) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepository) CreateUser(_ context.Context, name, email, password string) (*model.User, error) {
	user := &model.User{
		ID:       f.nextID,
		Name:     name,
		Email:    email,
		Password: password,
		Role:     "user",
	}
	f.nextID++
	f.users[email] = user
	return user, nil
}

func newTestManager(t *testing.T) (*Manager, *fakeUserRepository, *session.Store) {
	t.Helper()
	repo := newFakeUserRepository()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return NewManager(repo, store), repo, store
}

func TestLoginPersistsSession(t *testing.T) {
	t.Parallel()

	manager, repo, store := newTestManager(t)
	if _, err := repo.CreateUser(context.Background(), "Ana", "ana@mail.com", "secreto"); err != nil {
		t.Fatal(err)
	}

	user, err := manager.Login(context.Background(), "ana@mail.com", "secreto")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Name != "Ana" {
		t.Fatalf("user.Name = %q", user.Name)
	}

	userID, ok, err := store.Load()
	if err != nil || !ok || userID != user.ID {
		t.Fatalf("session = (%d, %v, %v), want (%d, true, nil)", userID, ok, err, user.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	manager, repo, store := newTestManager(t)
	if _, err := repo.CreateUser(context.Background(), "Ana", "ana@mail.com", "secreto"); err != nil {
		t.Fatal(err)
	}

	if _, err := manager.Login(context.Background(), "ana@mail.com", "otra"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	// Неудачный вход сессию не трогает
	if _, ok, _ := store.Load(); ok {
		t.Fatal("failed login must not persist a session")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	manager, _, _ := newTestManager(t)

	if _, err := manager.Register(context.Background(), "Ana", "ana@mail.com", "secreto"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := manager.Register(context.Background(), "Otra Ana", "ana@mail.com", "x"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRestoreWithoutSession(t *testing.T) {
	t.Parallel()

	manager, _, _ := newTestManager(t)

	user, err := manager.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if user != nil {
		t.Fatalf("user = %+v, want nil", user)
	}
}

func TestRestoreClearsDanglingSession(t *testing.T) {
	t.Parallel()

	manager, _, store := newTestManager(t)
	// Сессия указывает на пользователя, которого в базе больше нет
	if err := store.Save(99); err != nil {
		t.Fatal(err)
	}

	user, err := manager.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if user != nil {
		t.Fatalf("user = %+v, want nil", user)
	}

	if _, ok, _ := store.Load(); ok {
		t.Fatal("dangling session must be cleared")
	}
}

func TestLogoutThenRestore(t *testing.T) {
	t.Parallel()

	manager, _, _ := newTestManager(t)
	if _, err := manager.Register(context.Background(), "Ana", "ana@mail.com", "secreto"); err != nil {
		t.Fatal(err)
	}

	if err := manager.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	user, err := manager.Restore(context.Background())
	if err != nil || user != nil {
		t.Fatalf("Restore after Logout = (%+v, %v), want (nil, nil)", user, err)
	}
}
