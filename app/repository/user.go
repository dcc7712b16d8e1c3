package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/entity"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrDuplicatePhone = errors.New("duplicate phone number")
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. Unique index violations are reported as
// ErrDuplicateEmail or ErrDuplicatePhone.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, phone_number, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.Address,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translateDuplicate(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*entity.User, error) {
	return r.findOne(ctx, "phone_number", phoneNumber)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT id, name, email, password_hash, phone_number, address, created_at, updated_at
		FROM users ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user := &entity.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, column string, value any) (*entity.User, error) {
	query := `
		SELECT id, name, email, password_hash, phone_number, address, created_at, updated_at
		FROM users WHERE ` + column + ` = ?
	`
	user := &entity.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, value), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	avatar, err := r.findAvatar(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Avatar = avatar

	return user, nil
}

func (r *UserRepository) findAvatar(ctx context.Context, userID uint64) (*entity.Avatar, error) {
	query := `SELECT id, public_id, url, user_id FROM avatars WHERE user_id = ?`

	avatar := &entity.Avatar{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&avatar.ID,
		&avatar.PublicID,
		&avatar.URL,
		&avatar.UserID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, user *entity.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.PhoneNumber,
		&user.Address,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

func translateDuplicate(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlDuplicateEntry {
		return err
	}

	switch {
	case strings.Contains(mysqlErr.Message, "users_email_unique"):
		return ErrDuplicateEmail
	case strings.Contains(mysqlErr.Message, "users_phone_number_unique"):
		return ErrDuplicatePhone
	default:
		return err
	}
}

