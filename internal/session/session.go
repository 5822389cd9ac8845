package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const storeVersion = 1

// Store хранит единственный ключ - идентификатор вошедшего пользователя -
// в локальном JSON-файле, переживающем перезапуск процесса.
type Store struct {
	mu   sync.Mutex
	path string
}

type envelope struct {
	Version int   `json:"version"`
	UserID  int64 `json:"user_id"`
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath возвращает путь к файлу сессии в каталоге настроек пользователя.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "finance_desktop", "session.json"), nil
}

func (s *Store) Save(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.Marshal(envelope{Version: storeVersion, UserID: userID})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Load возвращает сохраненный идентификатор. Отсутствие файла - не ошибка:
// пользователь просто не аутентифицирован.
func (s *Store) Load() (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read session file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, false, fmt.Errorf("parse session file: %w", err)
	}
	if env.UserID == 0 {
		return 0, false, nil
	}
	return env.UserID, true, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
