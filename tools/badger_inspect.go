package main

import (
	"chat-poll/infrastructure/storage"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", storage.MessagePrefix, "Prefix to scan ("+storage.MessagePrefix+" or "+storage.ParticipantPrefix+")")
	limit := flag.Int("limit", 0, "Maximum number of rows, 0 for all")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	entries, err := storage.ScanEntries(db, *prefix, *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Time", "Owner", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, entry := range entries {
		table.Append([]string{entry.Key, entry.Type, entry.Time, entry.Owner, entry.Detail})
	}
	table.Render()
	fmt.Printf("\n%d entries under %q\n", len(entries), *prefix)
}

// openDB opens the directory read-only so that a running server keeps its lock.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			return nil, fmt.Errorf("database was not closed cleanly, start and stop the server once to repair it: %w", err)
		}
		return nil, err
	}
	return db, nil
}
