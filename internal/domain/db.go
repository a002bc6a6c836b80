package domain

import "context"

// Database is the lifecycle surface of the storage backend. The backend owns
// its migrations; callers only ask for them to be applied.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
