package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory/internal/model"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/pkg/validator"
)

// fakeDB runs transactions inline. Statement methods are never reached
// because the fake repositories ignore the DB they are bound to. When repo is
// set, a failed transaction restores its products.
type fakeDB struct {
	db.DB
	repo    *fakeProductRepo
	txCount int
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.txCount++

	var snapshot []model.Product
	if f.repo != nil {
		snapshot = append(snapshot, f.repo.products...)
	}

	err := txFunc(f)
	if err != nil && f.repo != nil {
		f.repo.products = snapshot
	}
	return err
}

// fakeProductRepo stores products in memory.
type fakeProductRepo struct {
	products  []model.Product
	nextID    int64
	criteria  []model.Criterion
	summaries []model.CategorySummary
	copies    int
	err       error
}

func (r *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r *fakeProductRepo) CreateProduct(_ context.Context, p repository.CreateProductParams) (model.Product, error) {
	if r.err != nil {
		return model.Product{}, r.err
	}
	r.nextID++
	product := model.Product{ID: r.nextID, Name: p.Name, Quantity: p.Quantity, Price: p.Price, Category: p.Category}
	r.products = append(r.products, product)
	return product, nil
}

func (r *fakeProductRepo) CopyProducts(ctx context.Context, params []repository.CreateProductParams) (int64, error) {
	r.copies++
	for _, p := range params {
		if _, err := r.CreateProduct(ctx, p); err != nil {
			return 0, err
		}
	}
	return int64(len(params)), nil
}

func (r *fakeProductRepo) DeleteProduct(_ context.Context, id int64) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeProductRepo) ListAllProducts(context.Context) ([]model.Product, error) {
	return r.products, r.err
}

func (r *fakeProductRepo) SearchProducts(_ context.Context, criteria []model.Criterion) ([]model.Product, error) {
	r.criteria = criteria
	return r.products, r.err
}

func (r *fakeProductRepo) SummarizeByCategory(context.Context) ([]model.CategorySummary, error) {
	return r.summaries, r.err
}

type fakeOutboxRepo struct {
	msgs []repository.CreateOutboxMsgParams
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.msgs = append(r.msgs, params)
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return errors.New("not implemented")
}

func newTestValidator(t *testing.T) validator.Validator {
	t.Helper()
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)
	return v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
