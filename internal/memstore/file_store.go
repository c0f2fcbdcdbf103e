package memstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store using a single JSON file. Writes within one
// process are serialized by the mutex; concurrent processes race with
// last-writer-wins semantics, which is accepted for this store's low write
// frequency.
type FileStore struct {
	filename        string
	doc             *Document
	isDirty         bool
	createIfMissing bool
	mu              sync.RWMutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// CreateIfMissing makes Open seed an empty document instead of failing when
// the file does not exist. Without it a missing file is fatal, so history is
// never silently restarted from scratch.
func CreateIfMissing() FileOption {
	return func(f *FileStore) { f.createIfMissing = true }
}

// NewFileStore creates a file-backed memory store.
func NewFileStore(filename string, opts ...FileOption) (*FileStore, error) {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for memory file: %w", err)
		}
	}

	store := &FileStore{filename: filename}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Open loads the memory document from file.
func (f *FileStore) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.filename); os.IsNotExist(err) {
		if !f.createIfMissing {
			return fmt.Errorf("memory file %s does not exist", f.filename)
		}
		f.doc = NewDocument()
		f.isDirty = true
		return f.flush()
	}

	data, err := os.ReadFile(f.filename)
	if err != nil {
		return fmt.Errorf("failed to read memory file: %w", err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse memory file: %w", err)
	}

	f.doc = doc
	f.isDirty = false
	return nil
}

// Load returns a snapshot of the current document. Mutating the snapshot
// does not affect the store; use Update for writes.
func (f *FileStore) Load() (*Document, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.doc == nil {
		return nil, fmt.Errorf("memory store is not open")
	}
	return copyDocument(f.doc)
}

// Save replaces the document and writes it through to disk.
func (f *FileStore) Save(doc *Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied, err := copyDocument(doc)
	if err != nil {
		return err
	}
	f.doc = copied
	f.isDirty = true
	return f.flush()
}

// Update runs fn on the document inside the store's critical section and
// writes the result through to disk. An error from fn leaves the stored
// document untouched.
func (f *FileStore) Update(fn func(*Document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.doc == nil {
		return fmt.Errorf("memory store is not open")
	}

	working, err := copyDocument(f.doc)
	if err != nil {
		return err
	}
	if err := fn(working); err != nil {
		return err
	}

	f.doc = working
	f.isDirty = true
	return f.flush()
}

// Flush writes pending data to disk if needed.
func (f *FileStore) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isDirty {
		return f.flush()
	}
	return nil
}

// internal flush method (must be called with lock held)
func (f *FileStore) flush() error {
	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory document: %w", err)
	}

	// Write to temp file then rename for an atomic-as-possible save
	tempFile := f.filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write memory temp file: %w", err)
	}
	if err := os.Rename(tempFile, f.filename); err != nil {
		return fmt.Errorf("failed to save memory file: %w", err)
	}

	f.isDirty = false
	return nil
}

// Close flushes pending data and releases the in-memory document.
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isDirty {
		if err := f.flush(); err != nil {
			return err
		}
	}
	f.doc = nil
	return nil
}

// Info provides implementation-specific information about the store.
func (f *FileStore) Info() (map[string]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	info := map[string]string{
		"implementation": "FileStore",
		"file_path":      f.filename,
		"file_name":      filepath.Base(f.filename),
		"is_dirty":       fmt.Sprintf("%t", f.isDirty),
	}
	if f.doc != nil {
		info["meetings"] = fmt.Sprintf("%d", len(f.doc.Meetings))
		info["observations"] = fmt.Sprintf("%d", len(f.doc.Observations))
		info["inbox"] = fmt.Sprintf("%d", len(f.doc.Inbox))
		info["captures"] = fmt.Sprintf("%d", len(f.doc.Captures))
	}
	return info, nil
}

// copyDocument deep-copies via JSON so snapshots never alias stored slices.
func copyDocument(doc *Document) (*Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to copy memory document: %w", err)
	}
	out := NewDocument()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to copy memory document: %w", err)
	}
	return out, nil
}
