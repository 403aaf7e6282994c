package main

import (
	"chat-poll/internal"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const defaultViewerPort = 8081

func main() {
	// 1. Load config
	_ = godotenv.Load()
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	config, err := internal.Load(es)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	port := config.DebugInspectorPort
	if port <= 0 {
		port = defaultViewerPort
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Serve the inspector only, the sweeper and the API are not running here
	stats := func() map[string]any {
		return map[string]any{
			"Status": "Viewer Mode (Read-Only)",
			"Time":   time.Now().Format(time.RFC822),
		}
	}

	address := fmt.Sprintf("%s:%d", config.Host, port)
	fmt.Printf("Viewer started at http://%s/inspect\n", address)
	if err := internal.NewDebugServer(db, logger, address, "/inspect", stats).ListenAndServe(); err != nil {
		log.Printf("Viewer stopped: %v", err)
	}
}
