// Package cart implements the per-customer cart of catalog products.
package cart

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/samber/lo"

	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

// Catalog provides the current catalog snapshot.
type Catalog interface {
	Snapshot() catalog.State
}

// Entry is a cart line with the catalog product it refers to. Product is
// nil when the product is no longer in the catalog.
type Entry struct {
	Line
	Product *catalog.Item
}

// Result is the outcome of a cart mutation. Line is nil after ActionRemoved.
type Result struct {
	Action Action
	Line   *Line
}

// Service encapsulates cart business logic.
type Service struct {
	lines   Repository
	catalog Catalog
}

// NewService creates a cart Service.
func NewService(lines Repository, cat Catalog) *Service {
	return &Service{
		lines:   lines,
		catalog: cat,
	}
}

// List returns the cart of email, each line enriched with its product.
func (s *Service) List(ctx context.Context, email string) ([]Entry, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	lines, err := s.lines.List(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "list lines")
	}

	snap := s.catalog.Snapshot()
	return lo.Map(lines, func(l Line, _ int) Entry {
		e := Entry{Line: l}
		if it, ok := snap.Product(l.ProductID); ok {
			e.Product = &it
		}
		return e
	}), nil
}

// Add puts one more unit of productID in the cart of email. The product must
// be present in the current catalog.
func (s *Service) Add(ctx context.Context, email, productID string) (*Result, error) {
	email, productID, err := validate(email, productID)
	if err != nil {
		return nil, err
	}
	if _, ok := s.catalog.Snapshot().Product(productID); !ok {
		return nil, &ProductNotFoundError{ProductID: productID}
	}

	line, created, err := s.lines.Increment(ctx, email, productID)
	if err != nil {
		return nil, errors.Wrap(err, "increment line")
	}

	action := ActionIncreased
	if created {
		action = ActionAdded
	}
	return &Result{Action: action, Line: line}, nil
}

// Remove takes one unit of productID out of the cart of email, dropping the
// line when it was the last one.
func (s *Service) Remove(ctx context.Context, email, productID string) (*Result, error) {
	email, productID, err := validate(email, productID)
	if err != nil {
		return nil, err
	}

	line, removed, err := s.lines.Decrement(ctx, email, productID)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "decrement line")
	}

	if removed {
		return &Result{Action: ActionRemoved}, nil
	}
	return &Result{Action: ActionDecreased, Line: line}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	return email, nil
}

func validate(email, productID string) (string, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", "", err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return "", "", ErrProductRequired
	}
	return email, productID, nil
}
