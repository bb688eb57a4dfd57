package service

import (
	"context"
	"sync"

	"fairtix/internal/model"

	"github.com/jackc/pgx/v5"
)

// fakeTx 只實作 service 會呼叫的 Commit/Rollback，其餘方法未使用
type fakeTx struct {
	pgx.Tx

	mu         sync.Mutex
	commitErr  error
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

func (tx *fakeTx) state() (committed, rolledBack bool) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.committed, tx.rolledBack
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

// txPerCall 每次 BeginTx 建立新的 fakeTx，用於併發測試
type txPerCall struct{}

func (txPerCall) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	events []*model.OrderCompletedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *model.OrderCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}
