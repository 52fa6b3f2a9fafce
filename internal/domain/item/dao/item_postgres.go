package dao

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/campus-market/internal/domain/item/entity"
)

const itemColumns = `id, image, category, condition, name, description, price, location, owner_id, is_archived`

// ItemPostgres implements item repository for PostgreSQL
type ItemPostgres struct {
	pool *pgxpool.Pool
}

// NewItemPostgres creates a new PostgreSQL item repository
func NewItemPostgres(pool *pgxpool.Pool) *ItemPostgres {
	return &ItemPostgres{pool: pool}
}

// Create inserts a new item and assigns its ID
func (r *ItemPostgres) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	id := uuid.New().String()
	_, err := r.pool.Exec(ctx, query,
		id,
		item.Image,
		item.Category,
		item.Condition,
		item.Name,
		item.Description,
		item.Price,
		item.Location,
		item.OwnerID,
		item.IsArchived,
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	item.ID = id
	return nil
}

// GetByID retrieves an item by ID
func (r *ItemPostgres) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	return scanItem(row)
}

// GetByIDs retrieves items for a set of IDs regardless of archive state
func (r *ItemPostgres) GetByIDs(ctx context.Context, ids []string) ([]entity.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ANY($1) ORDER BY seq`, ids)
}

// List retrieves non-archived items matching the filter
func (r *ItemPostgres) List(ctx context.Context, f entity.Filter) ([]entity.Item, error) {
	conds := []string{"NOT is_archived"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Search != "" {
		p := arg(strings.ToLower(f.Search))
		conds = append(conds, fmt.Sprintf(
			"(strpos(lower(name), %[1]s) > 0 OR strpos(lower(description), %[1]s) > 0 OR strpos(lower(category), %[1]s) > 0 OR strpos(lower(location), %[1]s) > 0)",
			p,
		))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.OwnerID != "" {
		conds = append(conds, "owner_id = "+arg(f.OwnerID))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY seq`
	return r.query(ctx, query, args...)
}

// Update applies listing changes
func (r *ItemPostgres) Update(ctx context.Context, id string, c entity.Changes) (*entity.Item, error) {
	query := `
		UPDATE items SET
			image = COALESCE($2, image),
			category = COALESCE($3, category),
			condition = COALESCE($4, condition),
			name = COALESCE($5, name),
			description = COALESCE($6, description),
			price = COALESCE($7, price),
			location = COALESCE($8, location)
		WHERE id = $1
		RETURNING ` + itemColumns

	row := r.pool.QueryRow(ctx, query, id, c.Image, c.Category, c.Condition, c.Name, c.Description, c.Price, c.Location)
	return scanItem(row)
}

// SetArchived sets the archived flag on one item
func (r *ItemPostgres) SetArchived(ctx context.Context, id string, archived bool) (*entity.Item, error) {
	row := r.pool.QueryRow(ctx, `UPDATE items SET is_archived = $2 WHERE id = $1 RETURNING `+itemColumns, id, archived)
	return scanItem(row)
}

// SetArchivedMany sets the archived flag on a set of items
func (r *ItemPostgres) SetArchivedMany(ctx context.Context, ids []string, archived bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `UPDATE items SET is_archived = $2 WHERE id = ANY($1)`, ids, archived)
	if err != nil {
		return 0, fmt.Errorf("updating items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetArchivedByOwner sets the archived flag on every item of an owner
func (r *ItemPostgres) SetArchivedByOwner(ctx context.Context, ownerID string, archived bool) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE items SET is_archived = $2 WHERE owner_id = $1`, ownerID, archived)
	if err != nil {
		return 0, fmt.Errorf("updating items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByOwner removes every item of an owner
func (r *ItemPostgres) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting items: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ItemPostgres) query(ctx context.Context, query string, args ...interface{}) ([]entity.Item, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []entity.Item
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	item, err := scanItemRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	return &item, nil
}

func scanItemRow(row pgx.Row) (entity.Item, error) {
	var item entity.Item
	err := row.Scan(
		&item.ID,
		&item.Image,
		&item.Category,
		&item.Condition,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Location,
		&item.OwnerID,
		&item.IsArchived,
	)
	if item.Image == nil {
		item.Image = []string{}
	}
	return item, err
}
