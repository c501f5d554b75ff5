package out

import "context"

// Gateway is the server side of the saved set.
type Gateway interface {
	List(ctx context.Context, token string) ([]string, error)
	Add(ctx context.Context, token, itemID string) error
	Remove(ctx context.Context, token, itemID string) error
}

type Identity interface {
	Token() (string, bool)
}
