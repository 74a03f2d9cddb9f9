package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory/internal/apperr"
	"github.com/tuanvumaihuynh/inventory/internal/event"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/pkg/zerror"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestImportService(t *testing.T, outbox repository.OutboxMsgRepository) (ImportService, *fakeProductRepo, *fakeDB) {
	t.Helper()
	repo := &fakeProductRepo{}
	fdb := &fakeDB{repo: repo}
	return NewImportService(discardLogger(), fdb, newTestValidator(t), repo, outbox), repo, fdb
}

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("Should import every row", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,10,1.2,Fruit\nBanana,20,0.8,Fruit\n")
		svc, repo, fdb := newTestImportService(t, nil)

		res, err := svc.Import(ctx, []string{path})
		require.NoError(t, err)

		assert.Equal(t, int64(2), res.Rows)
		assert.NotEmpty(t, res.BatchID)
		require.Len(t, res.Files, 1)
		assert.Equal(t, ImportFileResult{Path: path, Rows: 2}, res.Files[0])
		assert.Equal(t, 1, fdb.txCount)

		require.Len(t, repo.products, 2)
		assert.Equal(t, "Apple", repo.products[0].Name)
		assert.Equal(t, 10, repo.products[0].Quantity)
		assert.InDelta(t, 1.2, repo.products[0].Price, 1e-9)
		assert.Equal(t, "Banana", repo.products[1].Name)
	})

	t.Run("Should accept reordered and extra columns after a BOM", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "\xEF\xBB\xBFcategory,sku,price,name,quantity\nVegetable,X1,0.5, Carrot ,30\n")
		svc, repo, _ := newTestImportService(t, nil)

		res, err := svc.Import(ctx, []string{path})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Rows)

		require.Len(t, repo.products, 1)
		assert.Equal(t, "Carrot", repo.products[0].Name)
		assert.Equal(t, "Vegetable", repo.products[0].Category)
		assert.Equal(t, 30, repo.products[0].Quantity)
	})

	t.Run("Should accept a header only file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\n")
		svc, repo, _ := newTestImportService(t, nil)

		res, err := svc.Import(ctx, []string{path})
		require.NoError(t, err)
		assert.Zero(t, res.Rows)
		assert.Empty(t, repo.products)
	})

	t.Run("Should fail on a non numeric quantity", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,10,1.2,Fruit\nBanana,abc,0.8,Fruit\n")
		svc, repo, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{path})
		require.Error(t, err)
		assert.True(t, apperr.IsFormatError(err))
		assert.Contains(t, err.Error(), `"abc"`)
		assert.Contains(t, err.Error(), "line 3")
		assert.Empty(t, repo.products)
	})

	t.Run("Should fail on a non numeric price", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,10,cheap,Fruit\n")
		svc, _, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{path})
		require.Error(t, err)
		assert.True(t, apperr.IsFormatError(err))
	})

	t.Run("Should reject non finite prices", func(t *testing.T) {
		for _, price := range []string{"NaN", "Inf", "-Inf"} {
			dir := t.TempDir()
			path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,10,"+price+",Fruit\n")
			svc, _, _ := newTestImportService(t, nil)

			_, err := svc.Import(ctx, []string{path})
			require.Error(t, err, price)
			assert.True(t, apperr.IsFormatError(err), price)
		}
	})

	t.Run("Should reject a negative quantity as invalid", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,-1,1.2,Fruit\n")
		svc, repo, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{path})
		require.Error(t, err)
		assert.True(t, apperr.IsValidationError(err))
		assert.Empty(t, repo.products)

		var zerr zerror.ZError
		require.ErrorAs(t, err, &zerr)
		assert.Contains(t, zerr.Msg(), path+": line 2: ")
	})

	t.Run("Should accept padded header names", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name, quantity , price,category \nApple,10,1.2,Fruit\n")
		svc, repo, _ := newTestImportService(t, nil)

		res, err := svc.Import(ctx, []string{path})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Rows)
		require.Len(t, repo.products, 1)
		assert.Equal(t, 10, repo.products[0].Quantity)
		assert.InDelta(t, 1.2, repo.products[0].Price, 1e-9)
		assert.Equal(t, "Fruit", repo.products[0].Category)
	})

	t.Run("Should report the physical line when blank lines precede a bad row", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,10,1.2,Fruit\n\n\n\nBanana,abc,0.8,Fruit\n")
		svc, _, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{path})
		require.Error(t, err)
		assert.True(t, apperr.IsFormatError(err))
		assert.Contains(t, err.Error(), "line 6")
	})

	t.Run("Should reject hexadecimal prices", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,10,0x1p-2,Fruit\n")
		svc, _, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{path})
		require.Error(t, err)
		assert.True(t, apperr.IsFormatError(err))
		assert.Contains(t, err.Error(), `"0x1p-2"`)
	})

	t.Run("Should keep nothing when a later file fails", func(t *testing.T) {
		dir := t.TempDir()
		good := writeCSV(t, dir, "good.csv", "name,quantity,price,category\nApple,10,1.2,Fruit\n")
		bad := writeCSV(t, dir, "bad.csv", "name,quantity,price,category\nBanana,x,0.8,Fruit\n")
		never := writeCSV(t, dir, "never.csv", "name,quantity,price,category\nCarrot,1,0.5,Vegetable\n")
		svc, repo, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{good, bad, never})
		require.Error(t, err)
		assert.True(t, apperr.IsFormatError(err))
		assert.Contains(t, err.Error(), bad)

		assert.Equal(t, 1, repo.copies)
		assert.Empty(t, repo.products)
	})

	t.Run("Should fail on a missing header column", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "name,quantity,category\nApple,10,Fruit\n")
		svc, _, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{path})
		require.Error(t, err)
		assert.True(t, apperr.IsFormatError(err))
		assert.Contains(t, err.Error(), "price")
	})

	t.Run("Should fail on an empty file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeCSV(t, dir, "a.csv", "")
		svc, _, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{path})
		require.Error(t, err)
		assert.True(t, apperr.IsFormatError(err))
	})

	t.Run("Should fail on a missing file", func(t *testing.T) {
		svc, _, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, []string{filepath.Join(t.TempDir(), "missing.csv")})
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Should require at least one path", func(t *testing.T) {
		svc, _, _ := newTestImportService(t, nil)

		_, err := svc.Import(ctx, nil)
		require.Error(t, err)
		assert.True(t, apperr.IsValidationError(err))
	})

	t.Run("Should publish one imported event", func(t *testing.T) {
		dir := t.TempDir()
		a := writeCSV(t, dir, "a.csv", "name,quantity,price,category\nApple,10,1.2,Fruit\n")
		b := writeCSV(t, dir, "b.csv", "name,quantity,price,category\nCarrot,30,0.5,Vegetable\nLettuce,15,1,Vegetable\n")
		outbox := &fakeOutboxRepo{}
		svc, _, _ := newTestImportService(t, outbox)

		res, err := svc.Import(ctx, []string{a, b})
		require.NoError(t, err)

		require.Len(t, outbox.msgs, 1)
		assert.Equal(t, event.TopicInventoryImported, outbox.msgs[0].Topic)

		var ev event.InventoryImportedEvent
		require.NoError(t, json.Unmarshal(outbox.msgs[0].Payload, &ev))
		assert.Equal(t, res.BatchID, ev.BatchID)
		assert.Equal(t, []string{a, b}, ev.Files)
		assert.Equal(t, int64(3), ev.Rows)
	})
}
