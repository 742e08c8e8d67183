package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const itemColumns = `id, name, sku, unit, quantity, reorder_threshold, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) CreateItem(ctx context.Context, schemaName string, item ItemResponse) (*ItemResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s.inventory_items (id, name, sku, unit, quantity, reorder_threshold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+itemColumns+`
	`, pq.QuoteIdentifier(schemaName))

	created, err := scanItem(r.db.QueryRowContext(ctx, query,
		item.ID,
		item.Name,
		item.SKU,
		item.Unit,
		item.Quantity,
		item.ReorderThreshold,
		time.Now(),
	))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return created, nil
}

func (r *Repository) GetItem(ctx context.Context, schemaName string, id string) (*ItemResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+itemColumns+`
		FROM %s.inventory_items
		WHERE id = $1
	`, pq.QuoteIdentifier(schemaName))

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory item: %w", err)
	}
	return item, nil
}

func (r *Repository) ListItems(ctx context.Context, schemaName string) ([]ItemResponse, error) {
	query := fmt.Sprintf(`
		SELECT `+itemColumns+`
		FROM %s.inventory_items
		ORDER BY name
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListItemsWithPagination retrieves items with pagination, matching name or
// SKU when a search term is given.
func (r *Repository) ListItemsWithPagination(ctx context.Context, schemaName string, limit, offset int, search string) ([]ItemResponse, int, error) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if search != "" {
		whereClause = fmt.Sprintf("WHERE (name ILIKE $%d OR sku ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s.inventory_items %s`, pq.QuoteIdentifier(schemaName), whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory items: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+itemColumns+`
		FROM %s.inventory_items
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, pq.QuoteIdentifier(schemaName), whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query inventory items: %w", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) UpdateItem(ctx context.Context, schemaName string, id string, req UpdateItemRequest) (*ItemResponse, error) {
	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	set := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Unit != nil {
		set("unit", *req.Unit)
	}
	if req.ReorderThreshold != nil {
		set("reorder_threshold", *req.ReorderThreshold)
	}

	if len(setParts) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	set("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE %s.inventory_items
		SET %s
		WHERE id = $%d
		RETURNING `+itemColumns+`
	`, pq.QuoteIdentifier(schemaName), strings.Join(setParts, ", "), argIndex)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return item, nil
}

func (r *Repository) DeleteItem(ctx context.Context, schemaName string, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s.inventory_items WHERE id = $1`, pq.QuoteIdentifier(schemaName))

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion result: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// AdjustStock applies the delta and writes the audit row in one transaction.
// The guarded UPDATE keeps the quantity from going negative under concurrent
// adjustments.
func (r *Repository) AdjustStock(ctx context.Context, schemaName string, id string, delta int, reason, adjustedBy string) (*ItemResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		UPDATE %s.inventory_items
		SET quantity = quantity + $1, updated_at = $2
		WHERE id = $3 AND quantity + $1 >= 0
		RETURNING `+itemColumns+`
	`, pq.QuoteIdentifier(schemaName))

	item, err := scanItem(tx.QueryRowContext(ctx, query, delta, time.Now(), id))
	if err == sql.ErrNoRows {
		// distinguish missing item from an underflow
		var exists bool
		checkQuery := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s.inventory_items WHERE id = $1)`, pq.QuoteIdentifier(schemaName))
		if checkErr := tx.QueryRowContext(ctx, checkQuery, id).Scan(&exists); checkErr != nil {
			return nil, fmt.Errorf("failed to check inventory item: %w", checkErr)
		}
		if !exists {
			return nil, ErrItemNotFound
		}
		return nil, ErrNegativeQuantity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	auditQuery := fmt.Sprintf(`
		INSERT INTO %s.stock_adjustments (id, item_id, delta, reason, adjusted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pq.QuoteIdentifier(schemaName))

	_, err = tx.ExecContext(ctx, auditQuery,
		uuid.New().String(),
		id,
		delta,
		nullable(reason),
		nullable(adjustedBy),
		time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record stock adjustment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return item, nil
}

func (r *Repository) ListAdjustments(ctx context.Context, schemaName string, itemID string) ([]AdjustmentResponse, error) {
	query := fmt.Sprintf(`
		SELECT id, item_id, delta, reason, adjusted_by, created_at
		FROM %s.stock_adjustments
		WHERE item_id = $1
		ORDER BY created_at DESC
	`, pq.QuoteIdentifier(schemaName))

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []AdjustmentResponse
	for rows.Next() {
		var a AdjustmentResponse
		var reason, adjustedBy sql.NullString
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Delta, &reason, &adjustedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock adjustment: %w", err)
		}
		a.Reason = reason.String
		a.AdjustedBy = adjustedBy.String
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock adjustments: %w", err)
	}
	return adjustments, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*ItemResponse, error) {
	var item ItemResponse
	var updatedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.SKU,
		&item.Unit,
		&item.Quantity,
		&item.ReorderThreshold,
		&item.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if updatedAt.Valid {
		item.UpdatedAt = &updatedAt.Time
	}
	item.LowStock = item.Quantity <= item.ReorderThreshold
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]ItemResponse, error) {
	var items []ItemResponse
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory items: %w", err)
	}
	return items, nil
}
