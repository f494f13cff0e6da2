package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bookkeeper/library"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
	libName    string
	logLevel   string

	lib *library.Library
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bookkeeper: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookkeeper",
		Short:         "Manage a JSON-backed lending library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := library.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if cmd.Flags().Changed("name") {
				cfg.Name = libName
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			logger := newLogger(cfg.LogLevel)
			slog.SetDefault(logger)

			lib, err = library.Open(cfg.Name, cfg.DataDir, library.WithLogger(logger))
			return err
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "bookkeeper.yaml", "Path to the YAML config file")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Data directory (overrides config)")
	root.PersistentFlags().StringVar(&libName, "name", "", "Library name (overrides config)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		addBookCmd(),
		addBorrowerCmd(),
		checkoutCmd(),
		returnCmd(),
		listBooksCmd(),
		listBorrowersCmd(),
		searchCmd(),
		availableCmd(),
		borrowedCmd(),
		statsCmd(),
		historyCmd(),
	)
	return root
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

func addBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-book <title> <author> <genre>",
		Short: fmt.Sprintf("Register a new book (genres: %s)", strings.Join(library.Genres, ", ")),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := lib.AddBook(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Printf("Added %s\n", book)
			return nil
		},
	}
}

func addBorrowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-borrower <name> <email>",
		Short: "Register a new borrower",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			borrower, err := lib.AddBorrower(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Added borrower %s (ID: %s)\n", borrower.Name, borrower.ID)
			return nil
		},
	}
}

func checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <book-id> <borrower-id>",
		Short: "Check a book out to a borrower",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := lib.CheckoutBook(args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("cannot check out %s to %s: book unavailable, unknown id, or borrower at the %d-book limit",
					args[0], args[1], library.MaxBorrowedBooks)
			}
			fmt.Printf("Book %s checked out to %s\n", args[0], args[1])
			return nil
		},
	}
}

func returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <book-id> <borrower-id>",
		Short: "Return a book from the borrower who holds it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := lib.ReturnBook(args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("cannot return %s from %s: unknown id or not borrowed by them", args[0], args[1])
			}
			fmt.Printf("Book %s returned by %s\n", args[0], args[1])
			return nil
		},
	}
}

func listBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-books",
		Short: "List every book in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBooks(lib.AllBooks())
			return nil
		},
	}
}

func listBorrowersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-borrowers",
		Short: "List every registered borrower",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			borrowers := lib.AllBorrowers()
			if len(borrowers) == 0 {
				fmt.Println("No borrowers registered.")
				return nil
			}
			fmt.Printf("%-10s %-30s %-30s %s\n", "ID", "Name", "Email", "Borrowed")
			fmt.Println(strings.Repeat("-", 90))
			for _, m := range borrowers {
				fmt.Printf("%-10s %-30s %-30s %s\n",
					m.ID, truncateString(m.Name, 30), truncateString(m.Email, 30), strings.Join(m.Borrowed, ", "))
			}
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var title, author, genre, available string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search books by field, matched case-insensitively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := map[string]string{}
			if cmd.Flags().Changed("title") {
				criteria["title"] = title
			}
			if cmd.Flags().Changed("author") {
				criteria["author"] = author
			}
			if cmd.Flags().Changed("genre") {
				criteria["genre"] = genre
			}
			if cmd.Flags().Changed("available") {
				criteria["available"] = available
			}
			books := lib.SearchBooks(criteria)
			if len(books) == 0 {
				fmt.Println("No books found.")
				return nil
			}
			fmt.Printf("Found %d book(s):\n", len(books))
			printBooks(books)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Match on title")
	cmd.Flags().StringVar(&author, "author", "", "Match on author")
	cmd.Flags().StringVar(&genre, "genre", "", "Match on genre")
	cmd.Flags().StringVar(&available, "available", "", "Match on availability (true/false)")
	return cmd
}

func availableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List books currently on the shelf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBooks(lib.AvailableBooks())
			return nil
		},
	}
}

func borrowedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrowed <borrower-id>",
		Short: "Show the book ids a borrower currently holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := lib.BorrowerBooks(args[0])
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Printf("%s holds no books.\n", args[0])
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := lib.Statistics()
			fmt.Printf("Library: %s\n", lib.Name())
			fmt.Printf("Total books:     %d\n", stats.TotalBooks)
			fmt.Printf("Available books: %d\n", stats.AvailableBooks)
			fmt.Printf("Checked out:     %d\n", stats.CheckedOut)
			fmt.Printf("Total borrowers: %d\n", stats.TotalBorrowers)
			if len(stats.BooksByGenre) > 0 {
				fmt.Println("Books by genre:")
				for _, genre := range library.Genres {
					if n, ok := stats.BooksByGenre[genre]; ok {
						fmt.Printf("  %-12s %d\n", genre, n)
					}
				}
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the circulation log, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := lib.History()
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No circulation activity recorded.")
				return nil
			}
			fmt.Printf("%-20s %-9s %-10s %-10s\n", "Time", "Action", "Book", "Borrower")
			fmt.Println(strings.Repeat("-", 55))
			for _, ev := range events {
				fmt.Printf("%-20s %-9s %-10s %-10s\n",
					ev.Time.Format("2006-01-02 15:04:05"), ev.Action, ev.BookID, ev.BorrowerID)
			}
			return nil
		},
	}
}

func printBooks(books []*library.Book) {
	if len(books) == 0 {
		fmt.Println("No books in library.")
		return
	}
	fmt.Printf("%-10s %-30s %-25s %-12s %s\n", "ID", "Title", "Author", "Genre", "Available")
	fmt.Println(strings.Repeat("-", 90))
	for _, b := range books {
		availStr := "Yes"
		if !b.Available {
			availStr = "No"
		}
		fmt.Printf("%-10s %-30s %-25s %-12s %s\n",
			b.ID, truncateString(b.Title, 30), truncateString(b.Author, 25), b.Genre, availStr)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
