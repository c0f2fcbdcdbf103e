package entities

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store using a single JSON file, sharing the memory
// store's write-through and atomic-rename behavior.
type FileStore struct {
	filename        string
	doc             *Document
	createIfMissing bool
	mu              sync.RWMutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// CreateIfMissing makes Open seed an empty document instead of failing when
// the file does not exist.
func CreateIfMissing() FileOption {
	return func(f *FileStore) { f.createIfMissing = true }
}

// NewFileStore creates a file-backed entity store.
func NewFileStore(filename string, opts ...FileOption) (*FileStore, error) {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for entities file: %w", err)
		}
	}

	store := &FileStore{filename: filename}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Open loads the entity document from file.
func (f *FileStore) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.filename); os.IsNotExist(err) {
		if !f.createIfMissing {
			return fmt.Errorf("entities file %s does not exist", f.filename)
		}
		f.doc = NewDocument()
		return f.flush()
	}

	data, err := os.ReadFile(f.filename)
	if err != nil {
		return fmt.Errorf("failed to read entities file: %w", err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse entities file: %w", err)
	}

	f.doc = doc
	return nil
}

// Load returns a snapshot of the current document.
func (f *FileStore) Load() (*Document, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.doc == nil {
		return nil, fmt.Errorf("entity store is not open")
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
	return f.flush()
}

// Update runs fn on the document inside the store's critical section.
func (f *FileStore) Update(fn func(*Document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.doc == nil {
		return fmt.Errorf("entity store is not open")
	}

	working, err := copyDocument(f.doc)
	if err != nil {
		return err
	}
	if err := fn(working); err != nil {
		return err
	}

	f.doc = working
	return f.flush()
}

// internal flush method (must be called with lock held)
func (f *FileStore) flush() error {
	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entities document: %w", err)
	}

	tempFile := f.filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write entities temp file: %w", err)
	}
	if err := os.Rename(tempFile, f.filename); err != nil {
		return fmt.Errorf("failed to save entities file: %w", err)
	}
	return nil
}

// Close releases the in-memory document.
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

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
	}
	if f.doc != nil {
		info["customers"] = fmt.Sprintf("%d", len(f.doc.Customers))
		info["projects"] = fmt.Sprintf("%d", len(f.doc.Projects))
	}
	return info, nil
}

func copyDocument(doc *Document) (*Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to copy entities document: %w", err)
	}
	out := NewDocument()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to copy entities document: %w", err)
	}
	return out, nil
}
