package shared

import "context"

// TxRunner executes a function inside one storage transaction. Repositories
// participate by reading the transaction handle from the context.
type TxRunner interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
