package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User models a store account. Password carries the plaintext on the way in
// only; the database holds a bcrypt hash.
type User struct {
	UserID   int64  `json:"userId"`
	Login    string `json:"login"`
	Password string `json:"-"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// CreateUser registers a new user. The password is hashed before it reaches
// the database.
func (s *Store) CreateUser(ctx context.Context, user User) (User, error) {
	if err := ValidateUser(user); err != nil {
		return User{}, err
	}

	user.Login = strings.TrimSpace(user.Login)
	user.Email = strings.TrimSpace(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, password, email, name)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id
	`, user.Login, string(hash), user.Email, user.Name).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	user.UserID = id
	user.Password = ""
	return user, nil
}

// UserByID returns a single user by primary key, without the password hash.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, login, email, name
		FROM users
		WHERE user_id = $1
	`, id).Scan(&u.UserID, &u.Login, &u.Email, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// UserByLogin returns a single user by login, without the password hash.
func (s *Store) UserByLogin(ctx context.Context, login string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, login, email, name
		FROM users
		WHERE login = $1
	`, login).Scan(&u.UserID, &u.Login, &u.Email, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}
