package domain

import "context"

// DefaultStorageKey is the single slot the edit and view surfaces share.
const DefaultStorageKey = "columnData"

// KeyValue is a string blob store addressed by key.
type KeyValue interface {
	// Load returns the payload under key. found is false when nothing was
	// ever saved there.
	Load(ctx context.Context, key string) (payload string, found bool, err error)
	Save(ctx context.Context, key, payload string) error
}

// DocumentStore is the key/value blob store the serialized column lives in.
type DocumentStore interface {
	KeyValue
	Close() error
}

// DraftKey is where autosaved snapshots of an editing session go.
func DraftKey(key string) string {
	return key + ".draft"
}
