package sequences

import "context"

// Sequence names used by the delivery engine.
const (
	ItemGUID = "item_guid"
	MailID   = "mail_id"
)

// Repository hands out realm-scoped identifiers from a counter row. Run it
// inside the delivery transaction: the UPDATE takes a row lock, so two
// concurrent allocations can never return the same identifier — the property
// the legacy MAX(id)+1 reads lacked.
type Repository interface {
	// Next returns one fresh identifier.
	Next(ctx context.Context, name string) (int64, error)

	// NextRange reserves n consecutive identifiers and returns the first.
	NextRange(ctx context.Context, name string, n int64) (int64, error)
}
