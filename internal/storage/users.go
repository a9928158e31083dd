package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const userColumns = "id, email, password_hash, name, user_type, location, phone, skills, experience, bio, created_at, updated_at"

// CreateUser inserts a new account. Returns ErrDuplicate if the email is
// already registered.
func (s *Store) CreateUser(u User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	_, err := s.db.Exec(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.UserType, u.Location,
		u.Phone, u.Skills, u.Experience, u.Bio,
		u.CreatedAt.Format(time.RFC3339), u.UpdatedAt.Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetUserByID returns the canonical user record, or ErrNotFound.
func (s *Store) GetUserByID(id string) (User, error) {
	return s.getUser("id", id)
}

// GetUserByEmail returns the user registered under email, or ErrNotFound.
func (s *Store) GetUserByEmail(email string) (User, error) {
	return s.getUser("email", email)
}

func (s *Store) getUser(column, value string) (User, error) {
	var u User
	var createdAt, updatedAt string
	err := s.db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.UserType, &u.Location,
		&u.Phone, &u.Skills, &u.Experience, &u.Bio, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return User{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return User{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return u, nil
}

// ProfilePatch carries partial profile edits. Nil fields are left unchanged;
// empty strings are valid values (partial profiles are permitted).
type ProfilePatch struct {
	Name       *string
	Location   *string
	Phone      *string
	Skills     *string
	Experience *string
	Bio        *string
}

// UpdateUserProfile applies patch to the canonical user row. The user record
// is the single source of truth; there is no separate profile document.
func (s *Store) UpdateUserProfile(id string, patch ProfilePatch) error {
	set := "updated_at = ?"
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	for _, f := range []struct {
		column string
		value  *string
	}{
		{"name", patch.Name},
		{"location", patch.Location},
		{"phone", patch.Phone},
		{"skills", patch.Skills},
		{"experience", patch.Experience},
		{"bio", patch.Bio},
	} {
		if f.value != nil {
			set += ", " + f.column + " = ?"
			args = append(args, *f.value)
		}
	}

	args = append(args, id)
	res, err := s.db.Exec("UPDATE users SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
