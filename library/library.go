package library

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ID prefixes for the two entity sets.
const (
	bookIDPrefix     = "BOOK"
	borrowerIDPrefix = "USER"
)

// Option configures a Library at construction time.
type Option func(*Library) error

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		l.log = logger
		return nil
	}
}

// WithClock overrides the timestamp source for circulation history.
// Useful in tests.
func WithClock(clock func() time.Time) Option {
	return func(l *Library) error {
		if clock == nil {
			return fmt.Errorf("nil clock")
		}
		l.history.clock = clock
		return nil
	}
}

// Library owns the book and borrower collections, mediates every
// checkout and return, and rewrites both persisted documents after each
// successful mutation. It is not safe for concurrent use; callers that
// share one across goroutines must serialize access themselves.
type Library struct {
	name    string
	store   *Store
	history *HistoryLog
	log     *slog.Logger

	books     map[string]*Book
	borrowers map[string]*Borrower

	// Insertion order of the collections. Ids are monotonic, so sorting
	// recovers the order after a reload.
	bookOrder     []string
	borrowerOrder []string
}

// Open loads (or initializes) a library persisted under dataDir. Absent
// documents start the matching collection empty.
func Open(name, dataDir string, opts ...Option) (*Library, error) {
	store, err := NewStore(dataDir)
	if err != nil {
		return nil, err
	}

	books, err := store.LoadBooks()
	if err != nil {
		return nil, err
	}
	borrowers, err := store.LoadBorrowers()
	if err != nil {
		return nil, err
	}

	l := &Library{
		name:          name,
		store:         store,
		history:       NewHistoryLog(filepath.Join(dataDir, historyFile)),
		log:           slog.Default(),
		books:         books,
		borrowers:     borrowers,
		bookOrder:     sortedKeys(books),
		borrowerOrder: sortedKeys(borrowers),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Name returns the library's display name.
func (l *Library) Name() string { return l.name }

// AddBook registers a new book and persists both collections. The id is
// generated from the existing book ids; an invalid genre fails before any
// id is consumed or anything is written.
func (l *Library) AddBook(title, author, genre string) (*Book, error) {
	book, err := NewBook(GenerateID(bookIDPrefix, l.bookOrder), title, author, genre)
	if err != nil {
		return nil, err
	}
	l.books[book.ID] = book
	l.bookOrder = append(l.bookOrder, book.ID)
	if err := l.persist(); err != nil {
		return nil, err
	}
	l.log.Info("book added", "id", book.ID, "title", title, "genre", genre)
	return book, nil
}

// AddBorrower registers a new borrower with an empty borrowed list and
// persists both collections.
func (l *Library) AddBorrower(name, email string) (*Borrower, error) {
	borrower := NewBorrower(GenerateID(borrowerIDPrefix, l.borrowerOrder), name, email)
	l.borrowers[borrower.ID] = borrower
	l.borrowerOrder = append(l.borrowerOrder, borrower.ID)
	if err := l.persist(); err != nil {
		return nil, err
	}
	l.log.Info("borrower added", "id", borrower.ID, "name", name)
	return borrower, nil
}

// CheckoutBook hands bookID to borrowerID. It returns false without
// touching any state when the book is unknown or unavailable, the
// borrower is unknown, or the borrower is at the book limit. Every check
// runs before the first mutation, so no partial state is observable.
func (l *Library) CheckoutBook(bookID, borrowerID string) (bool, error) {
	book, ok := l.books[bookID]
	if !ok || !book.Available {
		l.log.Debug("checkout refused", "book", bookID, "borrower", borrowerID, "reason", "book unknown or unavailable")
		return false, nil
	}
	borrower, ok := l.borrowers[borrowerID]
	if !ok || !borrower.CanBorrow() {
		l.log.Debug("checkout refused", "book", bookID, "borrower", borrowerID, "reason", "borrower unknown or at limit")
		return false, nil
	}

	borrower.BorrowBook(bookID)
	book.Available = false
	if err := l.persist(); err != nil {
		return false, err
	}
	l.recordHistory(ActionCheckout, bookID, borrowerID)
	l.log.Info("book checked out", "book", bookID, "borrower", borrowerID)
	return true, nil
}

// ReturnBook takes bookID back from borrowerID. It returns false when
// either id is unknown or that borrower does not hold the book; a return
// against the wrong borrower fails even while the book is checked out.
func (l *Library) ReturnBook(bookID, borrowerID string) (bool, error) {
	book, ok := l.books[bookID]
	if !ok {
		return false, nil
	}
	borrower, ok := l.borrowers[borrowerID]
	if !ok || !borrower.ReturnBook(bookID) {
		l.log.Debug("return refused", "book", bookID, "borrower", borrowerID)
		return false, nil
	}

	book.Available = true
	if err := l.persist(); err != nil {
		return false, err
	}
	l.recordHistory(ActionReturn, bookID, borrowerID)
	l.log.Info("book returned", "book", bookID, "borrower", borrowerID)
	return true, nil
}

// SearchBooks returns every book whose serialized fields match all given
// criteria, compared case-insensitively. A criterion key absent from the
// serialized form excludes the book. Empty criteria return all books in
// insertion order.
func (l *Library) SearchBooks(criteria map[string]string) []*Book {
	results := []*Book{}
	for _, id := range l.bookOrder {
		book := l.books[id]
		fields := book.Fields()
		match := true
		for key, want := range criteria {
			got, ok := fields[key]
			if !ok || !strings.EqualFold(got, want) {
				match = false
				break
			}
		}
		if match {
			results = append(results, book)
		}
	}
	return results
}

// AvailableBooks returns the books currently on the shelf, in insertion order.
func (l *Library) AvailableBooks() []*Book {
	available := []*Book{}
	for _, id := range l.bookOrder {
		if book := l.books[id]; book.Available {
			available = append(available, book)
		}
	}
	return available
}

// AllBooks returns every book in insertion order.
func (l *Library) AllBooks() []*Book {
	books := make([]*Book, 0, len(l.bookOrder))
	for _, id := range l.bookOrder {
		books = append(books, l.books[id])
	}
	return books
}

// AllBorrowers returns every borrower in insertion order.
func (l *Library) AllBorrowers() []*Borrower {
	borrowers := make([]*Borrower, 0, len(l.borrowerOrder))
	for _, id := range l.borrowerOrder {
		borrowers = append(borrowers, l.borrowers[id])
	}
	return borrowers
}

// BorrowerBooks returns the ids of the books borrowerID currently holds.
// Unlike the other read paths it fails for an unknown borrower.
func (l *Library) BorrowerBooks(borrowerID string) ([]string, error) {
	borrower, ok := l.borrowers[borrowerID]
	if !ok {
		return nil, fmt.Errorf("borrower %s: %w", borrowerID, ErrBorrowerNotFound)
	}
	return slices.Clone(borrower.Borrowed), nil
}

// Statistics computes a fresh summary from in-memory state.
func (l *Library) Statistics() Statistics {
	available := 0
	byGenre := map[string]int{}
	for _, book := range l.books {
		if book.Available {
			available++
		}
		byGenre[book.Genre]++
	}
	return Statistics{
		TotalBooks:     len(l.books),
		AvailableBooks: available,
		CheckedOut:     len(l.books) - available,
		TotalBorrowers: len(l.borrowers),
		BooksByGenre:   byGenre,
	}
}

// History replays the circulation log, oldest first.
func (l *Library) History() ([]CirculationEvent, error) {
	return l.history.All()
}

// persist rewrites both documents. Called after every successful mutation.
func (l *Library) persist() error {
	if err := l.store.SaveBooks(l.books); err != nil {
		return err
	}
	return l.store.SaveBorrowers(l.borrowers)
}

// recordHistory appends to the circulation log. The log is advisory, so
// a failed append is logged and the operation still succeeds.
func (l *Library) recordHistory(action, bookID, borrowerID string) {
	if _, err := l.history.Record(action, bookID, borrowerID); err != nil {
		l.log.Warn("history append failed", "action", action, "book", bookID, "err", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
