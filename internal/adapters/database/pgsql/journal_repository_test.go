package pgsql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx implements pgx.Tx in memory: Exec succeeds and records the statement
// until one matching failOn, which returns failErr instead.
type fakeTx struct {
	failOn  string
	failErr error

	executed   []string
	committed  bool
	rolledBack bool
}

var _ pgx.Tx = (*fakeTx)(nil)

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, t.failErr
	}
	t.executed = append(t.executed, sql)
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Conn() *pgx.Conn                       { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects        { return pgx.LargeObjects{} }

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("fakeTx: CopyFrom not supported")
}

func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("fakeTx: Prepare not supported")
}

func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeTx: Query not supported")
}

func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

// fakeDB hands out a single scripted transaction.
type fakeDB struct {
	tx *fakeTx
}

var _ db = (*fakeDB)(nil)

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) { return d.tx, nil }

func (d *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakeDB: statement outside transaction")
}

func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: statement outside transaction")
}

func (d *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

// A failure between the detail delete and the header delete rolls the whole
// transaction back: the attachment and detail deletes that already ran are
// never committed.
func TestDeleteJournal_RollsBackWhenHeaderDeleteFails(t *testing.T) {
	tx := &fakeTx{failOn: "journal_headers", failErr: errors.New("connection reset")}
	repo := &PgxJournalRepository{db: &fakeDB{tx: tx}}

	err := repo.DeleteJournal(context.Background(), "20240115000001")

	require.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	require.Len(t, tx.executed, 2)
	assert.Contains(t, tx.executed[0], "journal_attachments")
	assert.Contains(t, tx.executed[1], "journal_details")
}

func TestDeleteJournal_CommitsAttachmentsDetailsHeader(t *testing.T) {
	tx := &fakeTx{}
	repo := &PgxJournalRepository{db: &fakeDB{tx: tx}}

	err := repo.DeleteJournal(context.Background(), "20240115000001")

	require.NoError(t, err)
	assert.True(t, tx.committed)
	require.Len(t, tx.executed, 3)
	assert.Contains(t, tx.executed[0], "journal_attachments")
	assert.Contains(t, tx.executed[1], "journal_details")
	assert.Contains(t, tx.executed[2], "journal_headers")
}
