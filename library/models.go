package library

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Sentinel errors for callers that need to branch on failure cause.
var (
	// ErrInvalidGenre is returned when a book is constructed or loaded
	// with a genre outside Genres.
	ErrInvalidGenre = errors.New("invalid genre")

	// ErrBorrowerNotFound is returned by BorrowerBooks for an unknown id.
	ErrBorrowerNotFound = errors.New("borrower not found")
)

// Genres is the fixed set of accepted book genres.
var Genres = []string{"Fiction", "Non-Fiction", "Science", "History", "Technology"}

// MaxBorrowedBooks is how many books a borrower may hold at once.
const MaxBorrowedBooks = 3

// Book represents metadata and current availability of a book in the library.
type Book struct {
	ID        string `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre"`
	Available bool   `json:"available"`
}

// NewBook constructs a Book after validating the genre. New books start available.
func NewBook(id, title, author, genre string) (*Book, error) {
	if !slices.Contains(Genres, genre) {
		return nil, fmt.Errorf("genre %q not in %v: %w", genre, Genres, ErrInvalidGenre)
	}
	return &Book{ID: id, Title: title, Author: author, Genre: genre, Available: true}, nil
}

// Validate re-checks the genre constraint, used when reconstructing books
// from a persisted document.
func (b *Book) Validate() error {
	if !slices.Contains(Genres, b.Genre) {
		return fmt.Errorf("book %s: genre %q not in %v: %w", b.ID, b.Genre, Genres, ErrInvalidGenre)
	}
	return nil
}

// Fields returns the book's serialized field mapping with every value
// rendered as a string. Search matching runs against this form.
func (b *Book) Fields() map[string]string {
	return map[string]string{
		"book_id":   b.ID,
		"title":     b.Title,
		"author":    b.Author,
		"genre":     b.Genre,
		"available": strconv.FormatBool(b.Available),
	}
}

func (b *Book) String() string {
	return fmt.Sprintf("[%s] %s by %s (%s) - available=%t", b.ID, b.Title, b.Author, b.Genre, b.Available)
}

// Borrower represents a registered library member and the books they hold.
type Borrower struct {
	ID       string   `json:"borrower_id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Borrowed []string `json:"borrowed_books"`
}

// NewBorrower constructs a Borrower with an empty borrowed list.
func NewBorrower(id, name, email string) *Borrower {
	return &Borrower{ID: id, Name: name, Email: email, Borrowed: []string{}}
}

// CanBorrow reports whether the borrower is under the book limit.
func (m *Borrower) CanBorrow() bool {
	return len(m.Borrowed) < MaxBorrowedBooks
}

// BorrowBook appends bookID to the borrowed list. It returns false and
// leaves the list untouched when the borrower is at the limit. Duplicate
// ids are not checked here; Library guards against them.
func (m *Borrower) BorrowBook(bookID string) bool {
	if !m.CanBorrow() {
		return false
	}
	m.Borrowed = append(m.Borrowed, bookID)
	return true
}

// ReturnBook removes the first occurrence of bookID from the borrowed
// list, returning false when the borrower does not hold it.
func (m *Borrower) ReturnBook(bookID string) bool {
	i := slices.Index(m.Borrowed, bookID)
	if i < 0 {
		return false
	}
	m.Borrowed = slices.Delete(m.Borrowed, i, i+1)
	return true
}

func (m *Borrower) String() string {
	return fmt.Sprintf("[%s] %s <%s> holding %d", m.ID, m.Name, m.Email, len(m.Borrowed))
}

// Statistics is a point-in-time summary of the library's collections.
type Statistics struct {
	TotalBooks     int            `json:"total_books"`
	AvailableBooks int            `json:"available_books"`
	CheckedOut     int            `json:"checked_out"`
	TotalBorrowers int            `json:"total_borrowers"`
	BooksByGenre   map[string]int `json:"books_by_genre"`
}

// GenerateID derives the next sequential id for a prefixed entity set,
// e.g. GenerateID("BOOK", []string{"BOOK_0001"}) == "BOOK_0002".
//
// The numeric suffix is whatever follows the final underscore; entries
// without a parsable suffix are ignored. Suffixes of any length parse,
// so ids that outgrow four digits keep incrementing instead of wrapping.
func GenerateID(prefix string, existing []string) string {
	highest := 0
	for _, id := range existing {
		i := strings.LastIndexByte(id, '_')
		if i < 0 {
			continue
		}
		n, err := strconv.Atoi(id[i+1:])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s_%04d", prefix, highest+1)
}
