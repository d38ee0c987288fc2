package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/quillhq/quill-server/internal/config"
	"github.com/quillhq/quill-server/internal/logger"
	"github.com/quillhq/quill-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.NoteIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the bleve note index and wires it into the
// store so note writes are indexed automatically.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewNoteIndex(search.Options{
		DataPath: cfg.Search.IndexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(search.NewIndexAdapter(index))

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{NoteIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index from stored notes when the
// index is empty but notes exist, e.g. after an index wipe or mapping change.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	notes, err := storeHandle.ListAllNotes(ctx)
	if err != nil || len(notes) == 0 {
		return
	}

	log.Info("Search index is empty but notes exist, triggering initial reindex",
		"note_count", len(notes),
	)

	go func() {
		docs := make([]*search.NoteDocument, len(notes))
		for idx, note := range notes {
			docs[idx] = search.NoteToDocument(note)
		}
		if err := indexHandle.IndexDocuments(docs); err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
