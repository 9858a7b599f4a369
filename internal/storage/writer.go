package storage

import (
	"log/slog"
	"sync"

	"github.com/qepting91/edikte-scraper/internal/domain"
)

// Entry is one enriched record waiting to be persisted.
type Entry struct {
	Record domain.DetailRecord
	Status domain.Status
}

// WriterService persists entries from concurrent producers on one goroutine
// (Monitor Pattern).
type WriterService struct {
	Store *Store
	Log   *slog.Logger

	mu    sync.Mutex
	saved []domain.Record
}

// Start drains input into the store until input is closed.
func (w *WriterService) Start(wg *sync.WaitGroup, input <-chan Entry) {
	defer wg.Done()

	log := w.Log
	if log == nil {
		log = slog.Default()
	}

	for e := range input {
		rec, err := w.Store.Upsert(e.Record, e.Status)
		if err != nil {
			log.Error("Failed to save record", "url", e.Record.DetailURL, "err", err)
			continue
		}
		w.mu.Lock()
		w.saved = append(w.saved, rec)
		w.mu.Unlock()
	}
}

// Saved returns the records written so far, in write order.
func (w *WriterService) Saved() []domain.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Record, len(w.saved))
	copy(out, w.saved)
	return out
}
