// Command import_books seeds a bookkeeper data directory from the legacy
// SQLite library database, re-registering every book through the JSON-backed
// store. Loan state does not migrate; imported books start available.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	"bookkeeper/library"

	_ "github.com/mattn/go-sqlite3"
)

// genreByTitle assigns genres to the well-known seed titles. Anything
// not listed imports as Fiction.
var genreByTitle = map[string]string{
	"1984":                      "Fiction",
	"Animal Farm":               "Fiction",
	"The Diary of a Young Girl": "History",
	"The Art of War":            "History",
	"A Brief History of Time":   "Science",
	"The Selfish Gene":          "Science",
	"Clean Code":                "Technology",
	"The Pragmatic Programmer":  "Technology",
	"Sapiens":                   "Non-Fiction",
}

func main() {
	dbPath := flag.String("db", "library.db", "Path to the legacy SQLite database")
	dataDir := flag.String("data-dir", "./data", "Destination data directory")
	flag.Parse()

	if err := run(*dbPath, *dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "import_books: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, dataDir string) error {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	lib, err := library.Open("Imported Library", dataDir)
	if err != nil {
		return err
	}

	rows, err := db.Query(`SELECT title, author FROM books ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	successCount := 0
	errorCount := 0
	for rows.Next() {
		var title, author string
		if err := rows.Scan(&title, &author); err != nil {
			return fmt.Errorf("scan book: %w", err)
		}

		genre, ok := genreByTitle[title]
		if !ok {
			genre = "Fiction"
		}

		fmt.Printf("Importing: %s by %s (%s)... ", title, author, genre)
		book, err := lib.AddBook(title, author, genre)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", book.ID)
		successCount++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read books: %w", err)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nImported books:")
		fmt.Printf("%-10s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Println(strings.Repeat("-", 92))
		for _, book := range lib.AllBooks() {
			fmt.Printf("%-10s %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
