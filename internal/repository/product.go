package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/inventory/internal/model"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
)

type CreateProductParams struct {
	Name     string
	Quantity int
	Price    float64
	Category string
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	CopyProducts(ctx context.Context, params []CreateProductParams) (int64, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, criteria []model.Criterion) ([]model.Product, error)
	SummarizeByCategory(ctx context.Context) ([]model.CategorySummary, error)
}

const (
	productTable   = "inventory"
	productColumns = "id, name, quantity, price, category, created_at"
)

type productRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Quantity  int32     `db:"quantity"`
	Price     float64   `db:"price"`
	Category  string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	quantity, err := toInt32(params.Quantity)
	if err != nil {
		return model.Product{}, err
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO inventory (name, quantity, price, category)
		VALUES (@name, @quantity, @price, @category)
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"name":     params.Name,
			"quantity": quantity,
			"price":    params.Price,
			"category": params.Category,
		})
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return rowToModelProduct(row), nil
}

// CopyProducts bulk inserts products with the COPY protocol and returns the
// number of rows written.
func (r productRepository) CopyProducts(ctx context.Context, params []CreateProductParams) (int64, error) {
	if len(params) == 0 {
		return 0, nil
	}

	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{productTable},
		[]string{"name", "quantity", "price", "category"},
		pgx.CopyFromSlice(len(params), func(i int) ([]any, error) {
			p := params[i]
			quantity, err := toInt32(p.Quantity)
			if err != nil {
				return nil, err
			}
			return []any{p.Name, quantity, p.Price, p.Category}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy products: %w", err)
	}

	return n, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return 0, fmt.Errorf("delete product: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := r.SearchProducts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}

	return products, nil
}

func (r productRepository) SearchProducts(ctx context.Context, criteria []model.Criterion) ([]model.Product, error) {
	where, args, err := buildWhere(criteria)
	if err != nil {
		return nil, fmt.Errorf("build search filter: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM inventory`+where+` ORDER BY id`, args)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		products = append(products, rowToModelProduct(row))
	}

	return products, nil
}

func (r productRepository) SummarizeByCategory(ctx context.Context) ([]model.CategorySummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			category,
			COUNT(*)              AS product_count,
			SUM(quantity)         AS total_quantity,
			SUM(price * quantity) AS total_value
		FROM inventory
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("summarize by category: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CategorySummary, error) {
		var s model.CategorySummary
		err := row.Scan(&s.Category, &s.ProductCount, &s.TotalQuantity, &s.TotalValue)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect summaries: %w", err)
	}

	return summaries, nil
}

func toInt32(quantity int) (int32, error) {
	if quantity > math.MaxInt32 || quantity < math.MinInt32 {
		return 0, fmt.Errorf("quantity out of range: %d", quantity)
	}
	return int32(quantity), nil
}

func rowToModelProduct(row productRow) model.Product {
	return model.Product{
		ID:        row.ID,
		Name:      row.Name,
		Quantity:  int(row.Quantity),
		Price:     row.Price,
		Category:  row.Category,
		CreatedAt: row.CreatedAt,
	}
}
