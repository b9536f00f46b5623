package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookerapp/booker-server/internal/config"
	"github.com/bookerapp/booker-server/internal/domain"
	"github.com/bookerapp/booker-server/internal/logger"
	"github.com/bookerapp/booker-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.BookIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve index and hooks it into the store
// so book writes are indexed.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewBookIndex(search.Options{
		DataPath: cfg.Data.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{BookIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// is empty but the database holds books, e.g. after the index directory
// was removed.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	var books []*domain.Book
	for book, err := range storeHandle.Books.List(ctx) {
		if err != nil {
			log.Warn("Failed to list books for reindex", "error", err)
			return
		}
		books = append(books, book)
	}
	if len(books) == 0 {
		return
	}

	log.Info("Search index is empty but books exist, triggering reindex",
		"book_count", len(books),
	)

	go func() {
		if err := indexHandle.Rebuild(context.Background(), books); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search reindex completed", "documents", count)
	}()
}
