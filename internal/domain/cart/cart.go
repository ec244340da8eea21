package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart operations.
var (
	ErrEmailRequired   = errors.New("email required")
	ErrProductRequired = errors.New("product id required")
	ErrLineNotFound    = errors.New("cart line not found")
	// ErrProductNotFound matches every *ProductNotFoundError.
	ErrProductNotFound = errors.New("product not found")
)

// ProductNotFoundError indicates the product is not in the current catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return "product " + e.ProductID + " not found"
}

// Is lets errors.Is(err, ErrProductNotFound) match.
func (e *ProductNotFoundError) Is(target error) bool { return target == ErrProductNotFound }

// Action describes how a mutation changed a cart line.
type Action string

const (
	ActionAdded     Action = "added"
	ActionIncreased Action = "increased"
	ActionDecreased Action = "decreased"
	ActionRemoved   Action = "removed"
)

// Line is one product in a customer's cart.
type Line struct {
	ID        string
	Email     string
	ProductID string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence operations for cart lines.
type Repository interface {
	List(ctx context.Context, email string) ([]Line, error)
	// Increment adds one to the line for (email, productID), creating it
	// with quantity 1 when absent. created reports which happened.
	Increment(ctx context.Context, email, productID string) (line *Line, created bool, err error)
	// Decrement removes one from the line, deleting it at quantity 1.
	// It returns ErrLineNotFound when the line does not exist.
	Decrement(ctx context.Context, email, productID string) (line *Line, removed bool, err error)
}
