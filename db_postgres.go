package main

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PostgresStore struct {
	db  *sql.DB
	dsn string
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	p := &PostgresStore{db: d, dsn: dsn}
	if err := p.Init(); err != nil {
		d.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresStore) Init() error {
	// tables come from migrations; just verify connectivity
	return p.db.Ping()
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

func (p *PostgresStore) CreateUser(email, name, password string) (*User, error) {
	u, err := newUser(email, name, password)
	if err != nil {
		return nil, err
	}
	_, err = p.db.Exec(`INSERT INTO users(id,email,name,password_hash,created_at) VALUES($1,$2,$3,$4,now())`,
		u.ID, u.Email, u.Name, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (p *PostgresStore) GetUserByEmail(email string) (*User, error) {
	row := p.db.QueryRow(`SELECT id,email,name,password_hash,created_at FROM users WHERE email = $1`, email)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	roles, err := p.GetRoles(u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (p *PostgresStore) AddRole(userID, role string) error {
	var roleID int64
	if err := p.db.QueryRow(`SELECT id FROM roles WHERE name = $1`, role).Scan(&roleID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("role %q does not exist", role)
		}
		return err
	}
	_, err := p.db.Exec(`INSERT INTO user_roles(user_id,role_id) VALUES($1,$2) ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

func (p *PostgresStore) GetRoles(userID string) ([]string, error) {
	rows, err := p.db.Query(`SELECT r.name FROM roles r JOIN user_roles ur ON r.id = ur.role_id WHERE ur.user_id = $1 ORDER BY ur.granted_at, r.name`, userID)
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

func (p *PostgresStore) close() error { return p.db.Close() }
func (p *PostgresStore) ping() bool   { return p.db.Ping() == nil }
