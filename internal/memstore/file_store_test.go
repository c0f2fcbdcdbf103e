package memstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreMissingFileFails(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "memory.json")

	store, err := NewFileStore(storeFile)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if err := store.Open(); err == nil {
		t.Fatal("Expected Open to fail on a missing file")
	}
}

func TestFileStoreCreateIfMissing(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "memory.json")

	store, err := NewFileStore(storeFile, CreateIfMissing())
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(storeFile); err != nil {
		t.Fatalf("Expected the seed file to exist: %v", err)
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	if doc.Meetings == nil || doc.Inbox == nil || doc.Observations == nil || doc.Captures == nil {
		t.Error("Seed document should have all lists initialized")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "memory.json")

	store, err := NewFileStore(storeFile, CreateIfMissing())
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	err = store.Update(func(doc *Document) error {
		doc.AppendMeeting(MeetingRecord{
			MeetingID: "m-1",
			Title:     "Weekly sync",
			Date:      "2024-03-04",
			Attendees: []string{"lucas", "hannah"},
		})
		doc.AppendInbox(InboxItem{Type: InboxAction, Content: "send the deck", Status: StatusOpen})
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen without the create option: the file must be there with the
	// same content
	reopened, err := NewFileStore(storeFile)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if err := reopened.Open(); err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	doc, err := reopened.Load()
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	if len(doc.Meetings) != 1 || doc.Meetings[0].Title != "Weekly sync" {
		t.Errorf("Meeting did not survive the round trip: %+v", doc.Meetings)
	}
	if len(doc.Inbox) != 1 || doc.Inbox[0].Content != "send the deck" {
		t.Errorf("Inbox item did not survive the round trip: %+v", doc.Inbox)
	}
}

func TestFileStoreLoadReturnsCopy(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "memory.json")

	store, _ := NewFileStore(storeFile, CreateIfMissing())
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	snapshot, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	snapshot.AppendInbox(InboxItem{Content: "mutated snapshot"})

	fresh, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	if len(fresh.Inbox) != 0 {
		t.Error("Mutating a snapshot must not affect the store")
	}
}

func TestFileStoreUpdateErrorLeavesDocument(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "memory.json")

	store, _ := NewFileStore(storeFile, CreateIfMissing())
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.Update(func(doc *Document) error {
		doc.AppendInbox(InboxItem{Content: "should not persist"})
		return os.ErrInvalid
	}); err == nil {
		t.Fatal("Expected Update to propagate the callback error")
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}
	if len(doc.Inbox) != 0 {
		t.Error("Failed update must not modify the stored document")
	}
}

func TestFileStoreInfo(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "memory.json")

	store, _ := NewFileStore(storeFile, CreateIfMissing())
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	info, err := store.Info()
	if err != nil {
		t.Fatalf("Failed to get store info: %v", err)
	}
	if info["implementation"] != "FileStore" {
		t.Errorf("Expected implementation FileStore, got %s", info["implementation"])
	}
	if info["file_path"] != storeFile {
		t.Errorf("Expected file_path %s, got %s", storeFile, info["file_path"])
	}
	if info["meetings"] != "0" {
		t.Errorf("Expected 0 meetings, got %s", info["meetings"])
	}
}
