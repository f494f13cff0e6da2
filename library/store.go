package library

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// Document file names inside the data directory.
const (
	booksFile     = "library_books.json"
	borrowersFile = "library_borrowers.json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store persists the book and borrower collections as two JSON documents,
// each an object mapping entity id to its serialized fields. Saves always
// rewrite the whole document; loads of absent files yield empty
// collections so a fresh data directory just works.
type Store struct {
	booksPath     string
	borrowersPath string
}

// NewStore prepares a store rooted at dataDir, creating the directory so
// first-run succeeds.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		booksPath:     filepath.Join(dataDir, booksFile),
		borrowersPath: filepath.Join(dataDir, borrowersFile),
	}, nil
}

// LoadBooks reads the book document, re-validating every genre.
func (s *Store) LoadBooks() (map[string]*Book, error) {
	books := map[string]*Book{}
	if err := loadDocument(s.booksPath, &books); err != nil {
		return nil, err
	}
	for _, b := range books {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("load %s: %w", s.booksPath, err)
		}
	}
	return books, nil
}

// LoadBorrowers reads the borrower document. A borrower stored with a
// null borrowed list comes back with an empty slice.
func (s *Store) LoadBorrowers() (map[string]*Borrower, error) {
	borrowers := map[string]*Borrower{}
	if err := loadDocument(s.borrowersPath, &borrowers); err != nil {
		return nil, err
	}
	for _, m := range borrowers {
		if m.Borrowed == nil {
			m.Borrowed = []string{}
		}
	}
	return borrowers, nil
}

// SaveBooks rewrites the book document.
func (s *Store) SaveBooks(books map[string]*Book) error {
	return saveDocument(s.booksPath, books)
}

// SaveBorrowers rewrites the borrower document.
func (s *Store) SaveBorrowers(borrowers map[string]*Borrower) error {
	return saveDocument(s.borrowersPath, borrowers)
}

func loadDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// saveDocument writes through a temp file and renames it into place, so
// readers never observe a torn document.
func saveDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
