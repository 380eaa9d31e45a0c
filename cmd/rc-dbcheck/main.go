package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"radiocode/internal/server"
)

func main() {
	dbPath := os.Getenv("RC_DB_PATH")
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}
	if dbPath == "" {
		dbPath = "./data/radiocode.db"
	}

	db, err := server.OpenDB(dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("OpenDB failed: %v", err))
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name;`)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("query failed: %v", err))
		os.Exit(1)
	}
	defer rows.Close()

	fmt.Println("Tables:")
	for rows.Next() {
		var name string
		_ = rows.Scan(&name)
		fmt.Println(" -", name)
	}

	ctx := context.Background()
	store := server.NewSQLiteStore(db)
	n, err := store.Count(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("count failed: %v", err))
		os.Exit(1)
	}
	fmt.Println("Decode records:", n)

	recent, err := store.Recent(ctx, 5)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("recent failed: %v", err))
		os.Exit(1)
	}
	for _, rec := range recent {
		fmt.Printf(" %s  %-8s %-13s %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Make, rec.Status, rec.Message)
	}
}
