package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/xenking/orbit-storefront/internal/domain/auth"
	"github.com/xenking/orbit-storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
		cartEmail    string
		cartProducts string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or CATALOG_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or CATALOG_API_KEY_PEPPER env)")
	flag.StringVar(&cartEmail, "cart-email", "", "email of a demo cart to seed")
	flag.StringVar(&cartProducts, "cart-products", "", "comma-separated product ids added to the demo cart")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", slog.String("error", err.Error()))
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("CATALOG_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or CATALOG_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("CATALOG_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	products := lo.Compact(lo.Map(strings.Split(cartProducts, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if err := run(ctx, databaseURL, apiKey, apiKeyPepper, cartEmail, products); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper, cartEmail string, cartProducts []string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	if cartEmail != "" && len(cartProducts) > 0 {
		if err := seedCart(ctx, pool, cartEmail, cartProducts); err != nil {
			return errors.Wrap(err, "seed cart")
		}
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	info := auth.APIKeyInfo{
		ID:      "default",
		KeyHash: auth.Hash([]byte(pepper), apiKey),
		Name:    "Default catalog admin key",
		Scopes:  []string{auth.ScopeRefreshCatalog},
	}
	if err := postgres.NewAPIKeyRepository(pool).Upsert(ctx, info); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))

	return nil
}

// seedCart adds one unit of every product to the cart of email. Product ids
// are not checked against the catalog.
func seedCart(ctx context.Context, pool *pgxpool.Pool, email string, productIDs []string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	slog.Info("seeding demo cart", slog.String("email", email), slog.Int("products", len(productIDs)))

	repo := postgres.NewCartRepository(pool)
	for _, id := range productIDs {
		line, _, err := repo.Increment(ctx, email, id)
		if err != nil {
			return errors.Wrapf(err, "add product %s", id)
		}
		slog.Info("added cart line", slog.String("product_id", id), slog.Int("quantity", line.Quantity))
	}

	return nil
}
