package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Keeping the tx handle opaque lets use-case interfaces stay clean while the
// repository implementations detect it and run SELECT ... FOR UPDATE or
// tx-bound Exec/Query as needed. Repositories MUST gracefully accept a nil tx
// (non-transactional path).
//
// The claim flow depends on this: the key lookup, the ownership write, and the
// access-log appends for one attempt all share a single transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
