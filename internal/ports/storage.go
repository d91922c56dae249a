// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// Storage persists named keyword sets to durable storage.
// Only keyword sets are stored; automatons are always rebuilt from them.
// Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveSet must be transactional. A crash mid-write must not
// corrupt previously committed sets.
type Storage interface {
	// SaveSet persists a keyword set, overwriting any prior set of the same name.
	SaveSet(set *KeywordSet) error

	// LoadSet retrieves a keyword set by name.
	// Returns nil, nil if no such set exists.
	LoadSet(name string) (*KeywordSet, error)

	// ListSets returns the names of all stored sets, sorted.
	ListSets() ([]string, error)

	// DeleteSet removes a set. Idempotent: deleting a missing set is not an error.
	DeleteSet(name string) error

	// Close releases the underlying database.
	Close() error
}

// KeywordSet is a named, persisted keyword list.
type KeywordSet struct {
	Name      string   `json:"name"`
	Keywords  []string `json:"keywords"`
	Source    string   `json:"source"`     // where the keywords came from ("args", "file:<path>", ...)
	UpdatedAt int64    `json:"updated_at"` // unix seconds
}
