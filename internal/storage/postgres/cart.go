package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/orbit-storefront/internal/domain/cart"
)

const (
	listCartLinesSQL = `SELECT id, email, product_id, quantity, created_at, updated_at
	FROM cart_lines WHERE email = $1 ORDER BY created_at, id`

	// xmax is zero only for a freshly inserted row.
	incrementCartLineSQL = `INSERT INTO cart_lines (id, email, product_id, quantity)
	VALUES ($1, $2, $3, 1)
	ON CONFLICT (email, product_id)
	DO UPDATE SET quantity = cart_lines.quantity + 1, updated_at = now()
	RETURNING id, email, product_id, quantity, created_at, updated_at, (xmax = 0) AS inserted`

	lockCartLineSQL = `SELECT quantity FROM cart_lines
	WHERE email = $1 AND product_id = $2 FOR UPDATE`

	deleteCartLineSQL = `DELETE FROM cart_lines WHERE email = $1 AND product_id = $2`

	decrementCartLineSQL = `UPDATE cart_lines SET quantity = quantity - 1, updated_at = now()
	WHERE email = $1 AND product_id = $2
	RETURNING id, email, product_id, quantity, created_at, updated_at`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// List returns the lines of email, oldest first.
func (r *CartRepository) List(ctx context.Context, email string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartLinesSQL, email)
	if err != nil {
		return nil, errors.Wrap(err, "query cart lines")
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Line, error) {
		var l cart.Line
		err := row.Scan(&l.ID, &l.Email, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
		return l, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan cart lines")
	}
	return lines, nil
}

// Increment upserts the line in a single statement.
func (r *CartRepository) Increment(ctx context.Context, email, productID string) (*cart.Line, bool, error) {
	var (
		l        cart.Line
		inserted bool
	)
	err := r.pool.QueryRow(ctx, incrementCartLineSQL, uuid.New(), email, productID).Scan(
		&l.ID, &l.Email, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, false, errors.Wrapf(err, "upsert cart line %s", productID)
	}
	return &l, inserted, nil
}

// Decrement locks the line and either decrements or deletes it in one
// transaction.
func (r *CartRepository) Decrement(ctx context.Context, email, productID string) (*cart.Line, bool, error) {
	var (
		line    *cart.Line
		removed bool
	)
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var qty int
		if err := tx.QueryRow(ctx, lockCartLineSQL, email, productID).Scan(&qty); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cart.ErrLineNotFound
			}
			return errors.Wrap(err, "lock cart line")
		}

		if qty <= 1 {
			if _, err := tx.Exec(ctx, deleteCartLineSQL, email, productID); err != nil {
				return errors.Wrap(err, "delete cart line")
			}
			removed = true
			return nil
		}

		var l cart.Line
		if err := tx.QueryRow(ctx, decrementCartLineSQL, email, productID).Scan(
			&l.ID, &l.Email, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return errors.Wrap(err, "decrement cart line")
		}
		line = &l
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return line, removed, nil
}
