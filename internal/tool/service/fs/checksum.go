package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ChecksumStore remembers the SHA-256 of each file's content as last seen
// by a tool, so an edit can tell whether the file moved underneath it.
type ChecksumStore struct {
	mu    sync.RWMutex
	store map[string]string
}

// NewChecksumStore creates an empty ChecksumStore.
func NewChecksumStore() *ChecksumStore {
	return &ChecksumStore{
		store: make(map[string]string),
	}
}

// Compute returns the hex SHA-256 of data.
func (m *ChecksumStore) Compute(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Get returns the checksum recorded for path, if any.
func (m *ChecksumStore) Get(path string) (checksum string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	checksum, ok = m.store[path]
	return checksum, ok
}

// Update records the checksum for path.
func (m *ChecksumStore) Update(path string, checksum string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[path] = checksum
}

// Forget drops the checksum recorded for path.
func (m *ChecksumStore) Forget(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, path)
}
