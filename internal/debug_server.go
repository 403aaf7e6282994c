package internal

import (
	"chat-poll/infrastructure/storage"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

const (
	defaultInspectPrefix = storage.MessagePrefix
	defaultInspectLimit  = 500
)

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []storage.Entry
	Stats  map[string]any
	Error  string
}

// NewDebugServer serves an HTML view of the badger content on endpoint.
// ?prefix= selects the key range, ?limit= bounds the number of rows.
func NewDebugServer(db *badger.DB, log *slog.Logger, address, endpoint string, statsProvider StatsProvider) *http.Server {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultInspectPrefix
		}
		limit := defaultInspectLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		items, err := storage.ScanEntries(db, prefix, limit)
		if err != nil {
			log.Error("Debug inspector scan failed", "prefix", prefix, "error", err)
			data.Error = err.Error()
		}
		data.Items = items

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Debug("Debug inspector render failed", "error", err)
		}
	})

	return &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
