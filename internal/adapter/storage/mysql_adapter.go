package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

const mysqlDuplicateEntry = 1062

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sweets (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(64) NOT NULL,
		price DOUBLE NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

type MySQLAdapter struct {
	db *sql.DB
}

var (
	_ port.ItemRepository = (*MySQLAdapter)(nil)
	_ port.UserRepository = (*MySQLAdapter)(nil)
)

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the tables if they do not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	return m.SearchItems(ctx, domain.Filter{})
}

func (m *MySQLAdapter) SearchItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error) {
	var (
		where []string
		args  []any
	)
	if filter.Name != nil {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+escapeLike(*filter.Name)+"%")
	}
	if filter.Category != nil {
		where = append(where, "category LIKE ?")
		args = append(args, "%"+escapeLike(string(*filter.Category))+"%")
	}
	if filter.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}

	query := `SELECT id, name, category, price, quantity FROM sweets`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sweets: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan sweet: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id domain.ItemID) (*domain.Item, error) {
	return getItem(ctx, m.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getItem(ctx context.Context, q queryer, id domain.ItemID) (*domain.Item, error) {
	var item domain.Item
	err := q.QueryRowContext(ctx, `
		SELECT id, name, category, price, quantity
		FROM sweets WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Category, &item.Price, &item.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query sweet: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) CreateItem(ctx context.Context, fields domain.ItemFields) (*domain.Item, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO sweets (name, category, price, quantity)
		VALUES (?, ?, ?, ?)`,
		fields.Name, fields.Category, fields.Price, fields.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("insert sweet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert sweet: %w", err)
	}
	item := itemFrom(domain.ItemID(id), fields)
	return &item, nil
}

func (m *MySQLAdapter) UpdateItem(ctx context.Context, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE sweets
		SET name = ?, category = ?, price = ?, quantity = ?, version = version + 1, updated_at = NOW()
		WHERE id = ?`,
		fields.Name, fields.Category, fields.Price, fields.Quantity, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update sweet: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	item := itemFrom(id, fields)
	return &item, nil
}

func (m *MySQLAdapter) DeleteItem(ctx context.Context, id domain.ItemID) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM sweets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *MySQLAdapter) DecrementStock(ctx context.Context, id domain.ItemID, amount int) (int, error) {
	return m.adjustStock(ctx, id, -amount)
}

func (m *MySQLAdapter) IncrementStock(ctx context.Context, id domain.ItemID, amount int) (int, error) {
	return m.adjustStock(ctx, id, amount)
}

// adjustStock applies delta only if quantity stays non-negative, and reads
// the new quantity in the same transaction.
func (m *MySQLAdapter) adjustStock(ctx context.Context, id domain.ItemID, delta int) (int, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE sweets
		SET quantity = quantity + ?, version = version + 1, updated_at = NOW()
		WHERE id = ? AND quantity + ? >= 0`,
		delta, id, delta,
	)
	if err != nil {
		return 0, fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := getItem(ctx, tx, id); err != nil {
			return 0, err
		}
		return 0, domain.ErrInsufficientStock
	}

	item, err := getItem(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return item.Quantity, nil
}

func (m *MySQLAdapter) CreateUser(ctx context.Context, user domain.User) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt,
	)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return 0, domain.ErrEmailTaken
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return result.LastInsertId()
}

func (m *MySQLAdapter) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := m.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_admin, created_at
		FROM users WHERE email = ?`, email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
