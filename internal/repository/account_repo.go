package repository

import (
	"context"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, account.Username, account.PasswordHash, account.Role).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`
	var account models.Account
	err := r.db.QueryRow(ctx, query, username).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Role, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	var account models.Account
	err := r.db.QueryRow(ctx, query, id).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Role, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
