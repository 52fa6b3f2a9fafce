package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/campus-market/internal/domain/order/entity"
)

const orderColumns = `id, item_id, item_name, buyer_id, seller_id, status, created_at, updated_at`

// OrderPostgres implements order repository for PostgreSQL
type OrderPostgres struct {
	pool *pgxpool.Pool
}

// NewOrderPostgres creates a new PostgreSQL order repository
func NewOrderPostgres(pool *pgxpool.Pool) *OrderPostgres {
	return &OrderPostgres{pool: pool}
}

// Create inserts a new order and assigns its ID
func (r *OrderPostgres) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	id := uuid.New().String()
	_, err := r.pool.Exec(ctx, query,
		id,
		o.ItemID,
		o.ItemName,
		o.BuyerID,
		o.SellerID,
		string(o.Status),
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	o.ID = id
	return nil
}

// GetByID retrieves an order by ID
func (r *OrderPostgres) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// UpdateStatus sets the order status
func (r *OrderPostgres) UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) (*entity.Order, error) {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + orderColumns
	row := r.pool.QueryRow(ctx, query, id, string(status), at)
	return scanOrder(row)
}

// ListByBuyer retrieves a buyer's orders, newest first
func (r *OrderPostgres) ListByBuyer(ctx context.Context, userID string) ([]entity.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, userID)
}

// ListBySeller retrieves a seller's orders, newest first
func (r *OrderPostgres) ListBySeller(ctx context.Context, userID string) ([]entity.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE seller_id = $1 ORDER BY created_at DESC`, userID)
}

// DeleteByUser removes every order where the user is buyer or seller
func (r *OrderPostgres) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE buyer_id = $1 OR seller_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting orders: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *OrderPostgres) query(ctx context.Context, query string, args ...interface{}) ([]entity.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	o, err := scanOrderRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	return &o, nil
}

func scanOrderRow(row pgx.Row) (entity.Order, error) {
	var (
		o      entity.Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.ItemID,
		&o.ItemName,
		&o.BuyerID,
		&o.SellerID,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	o.Status = entity.Status(status)
	return o, err
}
