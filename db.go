package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEmailTaken is returned by store adapters on a duplicate email. The
// unique constraint is the authoritative guard; callers may pre-check but
// must still handle this from the create path.
var ErrEmailTaken = errors.New("email already registered")

// UserStore interface for identity persistence
type UserStore interface {
	Init() error
	// CreateUser enforces the password policy, derives the credential hash
	// and persists the identity. Returns ErrEmailTaken or *PolicyError.
	CreateUser(email, name, password string) (*User, error)
	// GetUserByEmail returns (nil, nil) when no identity has this email.
	// The comparison is case-sensitive.
	GetUserByEmail(email string) (*User, error)
	AddRole(userID, role string) error
	// GetRoles returns roles in assignment order.
	GetRoles(userID string) ([]string, error)
}

// Memory store
type MemStore struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewMemStore() *MemStore {
	return &MemStore{users: map[string]*User{}}
}

func (m *MemStore) Init() error { return nil }

func (m *MemStore) CreateUser(email, name, password string) (*User, error) {
	u, err := newUser(email, name, password)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, ErrEmailTaken
	}
	m.users[email] = u
	out := *u
	return &out, nil
}

func (m *MemStore) GetUserByEmail(email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	out := *u
	out.Roles = append([]string(nil), u.Roles...)
	return &out, nil
}

func (m *MemStore) AddRole(userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID != userID {
			continue
		}
		for _, r := range u.Roles {
			if r == role {
				return nil
			}
		}
		u.Roles = append(u.Roles, role)
		return nil
	}
	return fmt.Errorf("user %s not found", userID)
}

func (m *MemStore) GetRoles(userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			return append([]string(nil), u.Roles...), nil
		}
	}
	return nil, fmt.Errorf("user %s not found", userID)
}

// SQLite store
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: d, path: path}
	if err := s.Init(); err != nil {
		d.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, name TEXT NOT NULL, password_hash TEXT NOT NULL, created_at TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS roles (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE);`,
		`CREATE TABLE IF NOT EXISTS user_roles (user_id TEXT NOT NULL REFERENCES users(id), role_id INTEGER NOT NULL REFERENCES roles(id), granted_at TEXT NOT NULL DEFAULT (datetime('now')), PRIMARY KEY (user_id, role_id));`,
		`INSERT OR IGNORE INTO roles(name) VALUES ('User'), ('Admin');`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) CreateUser(email, name, password string) (*User, error) {
	u, err := newUser(email, name, password)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(`INSERT INTO users(id,email,name,password_hash,created_at) VALUES(?,?,?,?,datetime('now'))`,
		u.ID, u.Email, u.Name, u.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	row := s.db.QueryRow(`SELECT id,email,name,password_hash,created_at FROM users WHERE email = ?`, email)
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	roles, err := s.GetRoles(u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (s *SQLiteStore) AddRole(userID, role string) error {
	var roleID int64
	if err := s.db.QueryRow(`SELECT id FROM roles WHERE name = ?`, role).Scan(&roleID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("role %q does not exist", role)
		}
		return err
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO user_roles(user_id,role_id) VALUES(?,?)`, userID, roleID)
	return err
}

func (s *SQLiteStore) GetRoles(userID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT r.name FROM roles r JOIN user_roles ur ON r.id = ur.role_id WHERE ur.user_id = ? ORDER BY ur.rowid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

// lifecycle helpers
func (m *MemStore) close() error { return nil }
func (m *MemStore) ping() bool   { return true }

func (s *SQLiteStore) close() error { return s.db.Close() }
func (s *SQLiteStore) ping() bool   { return s.db.Ping() == nil }
