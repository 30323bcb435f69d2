package repositories

// CartSnapshotRepository persists serialized cart snapshots in a durable
// key-value store. The whole snapshot is written at once; there are no
// partial updates.
type CartSnapshotRepository interface {
	// Load returns the raw snapshot for key, or ok=false if none exists.
	Load(key string) (data []byte, ok bool, err error)
	// Save overwrites the snapshot for key.
	Save(key string, data []byte) error
	// Delete removes the snapshot for key; absent keys are not an error.
	Delete(key string) error
}
