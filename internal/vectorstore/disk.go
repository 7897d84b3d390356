package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File names inside the index directory.
const (
	vectorsFile    = "vectors.json"
	vocabularyFile = "vocabulary.json"
)

// DiskStore persists index state as two JSON files in one directory:
// vectors.json maps pattern id to its entry, vocabulary.json holds the
// IDF table. Both are rebuildable; a missing file reads as empty.
type DiskStore struct {
	dir string
}

// NewDiskStore returns a store rooted at dir. The directory is created
// on first save.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Dir returns the index directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// SaveVectors writes all entries, replacing the previous file.
func (s *DiskStore) SaveVectors(entries map[string]Entry) error {
	return s.writeJSON(vectorsFile, entries)
}

// LoadVectors reads all persisted entries. A missing file returns an
// empty map.
func (s *DiskStore) LoadVectors() (map[string]Entry, error) {
	entries := make(map[string]Entry)
	if err := s.readJSON(vectorsFile, &entries); err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, err
	}
	return entries, nil
}

// SaveVocabulary writes the IDF table, replacing the previous file.
func (s *DiskStore) SaveVocabulary(vocab Vocabulary) error {
	return s.writeJSON(vocabularyFile, vocab)
}

// LoadVocabulary reads the persisted IDF table. The second return is
// false when no vocabulary has been persisted yet.
func (s *DiskStore) LoadVocabulary() (Vocabulary, bool, error) {
	var vocab Vocabulary
	if err := s.readJSON(vocabularyFile, &vocab); err != nil {
		if os.IsNotExist(err) {
			return Vocabulary{}, false, nil
		}
		return Vocabulary{}, false, err
	}
	return vocab, true, nil
}

func (s *DiskStore) writeJSON(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create index directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	file, err := os.Create(path) // #nosec G304 -- path is under the configured index directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

func (s *DiskStore) readJSON(name string, v interface{}) error {
	path := filepath.Join(s.dir, name)
	file, err := os.Open(path) // #nosec G304 -- path is under the configured index directory
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
