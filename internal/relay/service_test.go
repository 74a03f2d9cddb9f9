package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory/internal/config"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory/pkg/correlationid"
)

type fakeDB struct {
	db.DB
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	pending []repository.ListUnprocessedOutboxMsgsResult
	updated []repository.BulkUpdateOutboxMsgsItem
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return errors.New("not implemented")
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := min(int(params.BatchSize), len(r.pending))
	return r.pending[:n], nil
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, params.Items...)
	r.pending = r.pending[len(params.Items):]
	return nil
}

func (r *fakeOutboxRepo) updatedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updated)
}

type fakeProducer struct {
	mu       sync.Mutex
	failOn   string
	produced []mq.ProduceMsg
	corrIDs  []string
}

func (p *fakeProducer) Produce(ctx context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg.Topic == p.failOn {
		return errors.New("broker unavailable")
	}
	p.produced = append(p.produced, msg)
	id, _ := correlationid.FromContext(ctx)
	p.corrIDs = append(p.corrIDs, id)
	return nil
}

func newMsg(topic string) repository.ListUnprocessedOutboxMsgsResult {
	return repository.ListUnprocessedOutboxMsgsResult{
		ID:      uuid.New(),
		Topic:   topic,
		Headers: map[string]string{correlationid.Header: "corr-" + topic},
		Payload: []byte(`{}`),
	}
}

func newTestService(cfg config.Relay, repo *fakeOutboxRepo, producer *fakeProducer) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(cfg, logger, &fakeDB{}, repo, producer)
}

func TestService_RelayOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("Should produce and mark every message in the batch", func(t *testing.T) {
		repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{
			newMsg("inventory.product.added"),
			newMsg("inventory.product.deleted"),
			newMsg("inventory.imported"),
		}}
		producer := &fakeProducer{}
		svc := newTestService(config.Relay{BatchSize: 2, Interval: time.Second}, repo, producer)

		n, err := svc.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, producer.produced, 2)
		assert.ElementsMatch(t, []string{"corr-inventory.product.added", "corr-inventory.product.deleted"}, producer.corrIDs)

		for _, item := range repo.updated {
			assert.Nil(t, item.Error)
		}

		n, err = svc.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = svc.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Should record producer errors", func(t *testing.T) {
		failing := newMsg("inventory.imported")
		repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{
			newMsg("inventory.product.added"),
			failing,
		}}
		producer := &fakeProducer{failOn: "inventory.imported"}
		svc := newTestService(config.Relay{BatchSize: 10, Interval: time.Second}, repo, producer)

		n, err := svc.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.Len(t, repo.updated, 2)
		for _, item := range repo.updated {
			if item.ID == failing.ID {
				require.NotNil(t, item.Error)
				assert.Contains(t, *item.Error, "broker unavailable")
			} else {
				assert.Nil(t, item.Error)
			}
		}
	})
}

func TestService_Run(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{
		newMsg("inventory.product.added"),
	}}
	svc := newTestService(config.Relay{BatchSize: 10, Interval: 10 * time.Millisecond}, repo, &fakeProducer{})

	cleanup := svc.Run(context.Background())
	assert.Eventually(t, func() bool { return repo.updatedCount() == 1 }, time.Second, 10*time.Millisecond)
	cleanup()
}
