package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/model"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db/dbtest"
)

func newTestProductRepository(t *testing.T) (ProductRepository, *db.Client) {
	t.Helper()

	pool, err := db.Initialize(context.Background(), config.Postgres{URL: dbtest.NewURL(t), MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	client := db.NewClient(pool)
	return NewProductRepository(client), client
}

var sampleProducts = []CreateProductParams{
	{Name: "Apple", Quantity: 10, Price: 1.2, Category: "Fruit"},
	{Name: "Banana", Quantity: 20, Price: 0.8, Category: "Fruit"},
	{Name: "Carrot", Quantity: 30, Price: 0.5, Category: "Vegetable"},
	{Name: "Lettuce", Quantity: 15, Price: 1.0, Category: "Vegetable"},
}

func names(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo, client := newTestProductRepository(t)

	n, err := repo.CopyProducts(ctx, sampleProducts)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	t.Run("Should list every product in id order", func(t *testing.T) {
		products, err := repo.ListAllProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple", "Banana", "Carrot", "Lettuce"}, names(products))
		for i := 1; i < len(products); i++ {
			assert.Less(t, products[i-1].ID, products[i].ID)
		}
	})

	t.Run("Should match substrings case-insensitively", func(t *testing.T) {
		products, err := repo.SearchProducts(ctx, []model.Criterion{
			{Field: model.FieldCategory, Op: model.OpContains, Value: "fruit"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple", "Banana"}, names(products))
	})

	t.Run("Should AND every criterion", func(t *testing.T) {
		products, err := repo.SearchProducts(ctx, []model.Criterion{
			{Field: model.FieldCategory, Op: model.OpContains, Value: "VEG"},
			{Field: model.FieldName, Op: model.OpContains, Value: "car"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Carrot"}, names(products))
	})

	t.Run("Should match numeric fields on their text form", func(t *testing.T) {
		products, err := repo.SearchProducts(ctx, []model.Criterion{
			{Field: model.FieldQuantity, Op: model.OpContains, Value: "0"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple", "Banana", "Carrot"}, names(products))

		products, err = repo.SearchProducts(ctx, []model.Criterion{
			{Field: model.FieldPrice, Op: model.OpContains, Value: "1.2"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Apple"}, names(products))
	})

	t.Run("Should match whole prices with a decimal point", func(t *testing.T) {
		products, err := repo.SearchProducts(ctx, []model.Criterion{
			{Field: model.FieldPrice, Op: model.OpContains, Value: "1.0"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Lettuce"}, names(products))
	})

	t.Run("Should treat wildcard characters literally", func(t *testing.T) {
		products, err := repo.SearchProducts(ctx, []model.Criterion{
			{Field: model.FieldName, Op: model.OpContains, Value: "%"},
		})
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("Should return everything without criteria", func(t *testing.T) {
		products, err := repo.SearchProducts(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, products, 4)
	})

	t.Run("Should summarize by category", func(t *testing.T) {
		summaries, err := repo.SummarizeByCategory(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 2)

		assert.Equal(t, "Fruit", summaries[0].Category)
		assert.Equal(t, int64(2), summaries[0].ProductCount)
		assert.Equal(t, int64(30), summaries[0].TotalQuantity)
		assert.InDelta(t, 28.0, summaries[0].TotalValue, 1e-9)

		assert.Equal(t, "Vegetable", summaries[1].Category)
		assert.Equal(t, int64(2), summaries[1].ProductCount)
		assert.Equal(t, int64(45), summaries[1].TotalQuantity)
		assert.InDelta(t, 30.0, summaries[1].TotalValue, 1e-9)
	})

	t.Run("Should create and delete a single product", func(t *testing.T) {
		p, err := repo.CreateProduct(ctx, CreateProductParams{Name: "Kiwi", Quantity: 3, Price: 0.4, Category: "Fruit"})
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())

		affected, err := repo.DeleteProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		affected, err = repo.DeleteProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Zero(t, affected)
	})

	t.Run("Should roll back writes of a failed transaction", func(t *testing.T) {
		err := client.WithTx(ctx, func(tx db.DB) error {
			if _, err := repo.WithDB(tx).CopyProducts(ctx, sampleProducts[:1]); err != nil {
				return err
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		products, err := repo.ListAllProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 4)
	})

	t.Run("Should reject rows violating the schema", func(t *testing.T) {
		_, err := repo.CreateProduct(ctx, CreateProductParams{Name: "Bad", Quantity: -1, Price: 1, Category: "Fruit"})
		assert.Error(t, err)
	})
}

func TestSummarizeByCategory_Empty(t *testing.T) {
	repo, _ := newTestProductRepository(t)

	summaries, err := repo.SummarizeByCategory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestInitialize_Idempotent(t *testing.T) {
	ctx := context.Background()
	cfg := config.Postgres{URL: dbtest.NewURL(t), MaxConns: 2}

	pool, err := db.Initialize(ctx, cfg)
	require.NoError(t, err)
	_, err = NewProductRepository(db.NewClient(pool)).CreateProduct(ctx, sampleProducts[0])
	require.NoError(t, err)
	pool.Close()

	pool, err = db.Initialize(ctx, cfg)
	require.NoError(t, err)
	defer pool.Close()

	products, err := NewProductRepository(db.NewClient(pool)).ListAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
