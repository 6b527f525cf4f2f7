package sql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/stores/blockchain/storetest"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/bsv-blockchain/headerchain/util"
	"github.com/bsv-blockchain/headerchain/util/usql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockSQL(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return &SQL{
		db:     usql.Wrap(db),
		engine: util.Postgres,
		logger: ulogger.TestLogger{},
		params: &chaincfg.RegressionNetParams,
	}, mock
}

func TestSQLGetDecodesRow(t *testing.T) {
	s, mock := createMockSQL(t)
	block := storetest.Chain(t, 1)[1]
	hash := block.Hash()

	rows := sqlmock.NewRows([]string{
		"header", "height", "chain_work", "total_chain_txs", "tx_count", "size_in_bytes",
	}).AddRow(block.Header().Bytes(), int64(1), block.ChainWork().FillBytes(make([]byte, 32)), int64(2), int64(1), int64(250))

	mock.ExpectQuery(`SELECT(.+)FROM blocks b(.+)`).
		WithArgs(hash[:]).
		WillReturnRows(rows)

	got, err := s.Get(context.Background(), &hash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, block.Bytes(), got.Bytes())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetQueryError(t *testing.T) {
	s, mock := createMockSQL(t)
	hash := storetest.Chain(t, 0)[0].Hash()

	mock.ExpectQuery(`SELECT(.+)FROM blocks b(.+)`).
		WillReturnError(errors.NewStorageUnavailableError("connection reset"))

	_, err := s.Get(context.Background(), &hash)
	assert.True(t, errors.Is(err, errors.ErrStorageError))
}

func TestSQLGetCorruptRow(t *testing.T) {
	s, mock := createMockSQL(t)
	hash := storetest.Chain(t, 0)[0].Hash()

	rows := sqlmock.NewRows([]string{
		"header", "height", "chain_work", "total_chain_txs", "tx_count", "size_in_bytes",
	}).AddRow([]byte{1, 2, 3}, int64(0), []byte{1}, int64(1), int64(1), int64(285))

	mock.ExpectQuery(`SELECT(.+)FROM blocks b(.+)`).
		WillReturnRows(rows)

	_, err := s.Get(context.Background(), &hash)
	assert.True(t, errors.Is(err, errors.ErrStorageError))
}

func TestSQLPutExecError(t *testing.T) {
	s, mock := createMockSQL(t)
	block := storetest.Chain(t, 0)[0]

	mock.ExpectExec(`INSERT INTO blocks(.+)ON CONFLICT \(hash\) DO NOTHING`).
		WillReturnError(errors.NewStorageUnavailableError("disk full"))

	err := s.Put(context.Background(), block)
	assert.True(t, errors.Is(err, errors.ErrStorageError))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLPutDuplicate(t *testing.T) {
	s, mock := createMockSQL(t)
	block := storetest.Chain(t, 0)[0]

	mock.ExpectExec(`INSERT INTO blocks(.+)ON CONFLICT \(hash\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO blocks(.+)ON CONFLICT \(hash\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Put(context.Background(), block))

	err := s.Put(context.Background(), block)
	assert.True(t, errors.Is(err, errors.ErrBlockExists))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSetStateUpserts(t *testing.T) {
	s, mock := createMockSQL(t)

	mock.ExpectExec(`INSERT INTO state(.+)ON CONFLICT \(key\) DO UPDATE(.+)`).
		WithArgs("chain_head", []byte{1}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.SetState(context.Background(), chainHeadKey, []byte{1}))
	require.NoError(t, mock.ExpectationsWereMet())
}
