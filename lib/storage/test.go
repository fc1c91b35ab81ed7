package storage

import "os"

func CleanDB(path string) {
	if _, err := os.Stat(path); err == nil {
		os.RemoveAll(path)
	}
}

// NewTestMemoryLevelDBBackend returns an empty memory database for tests.
func NewTestMemoryLevelDBBackend() (*LevelDBBackend, error) {
	return NewStorage(&Config{Scheme: "memory"})
}
