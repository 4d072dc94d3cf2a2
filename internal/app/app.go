// Package app wires the pipeline together: load document text, extract
// records, merge them into the stored set, persist, reindex. The core
// packages stay pure; everything stateful happens here.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/klassenbuch/internal/extract"
	"github.com/hyperifyio/klassenbuch/internal/homework"
	"github.com/hyperifyio/klassenbuch/internal/merge"
	"github.com/hyperifyio/klassenbuch/internal/search"
	"github.com/hyperifyio/klassenbuch/internal/store"
	"github.com/hyperifyio/klassenbuch/internal/textsource"
)

// IngestResult summarizes one ingest run.
type IngestResult struct {
	FilesLoaded  int
	RecordsFound int
	RecordsAdded int
	RecordsTotal int
}

// Ingest loads each path in argument order, extracts homework, merges the
// batches left to right into the stored set and persists the result. Files
// that yield no records are still registered so the loaded-files list shows
// every upload. The merge order matters: the earlier-processed record's
// fields win for duplicates, so paths must arrive in upload order.
func Ingest(ctx context.Context, cfg Config, paths []string) (IngestResult, error) {
	var res IngestResult

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return res, err
	}
	defer st.Close()

	records, err := st.Load()
	if err != nil {
		return res, err
	}
	before := len(records)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		doc, err := textsource.Load(path)
		if err != nil {
			return res, fmt.Errorf("load %s: %w", path, err)
		}

		batch := extract.Extract(doc.Text, doc.ID)
		log.Debug().Str("stage", "extract").Str("file", doc.Name).Int("records", len(batch)).Msg("extracted document")
		if len(batch) == 0 {
			log.Warn().Str("file", doc.Name).Msg("no homework with due dates found")
		}

		if err := st.AddFile(store.File{
			ID:            doc.ID,
			Name:          doc.Name,
			Size:          doc.Size,
			HomeworkCount: len(batch),
		}); err != nil {
			return res, err
		}
		res.FilesLoaded++
		res.RecordsFound += len(batch)

		records = merge.Merge(records, batch)
	}

	if err := st.ReplaceAll(records); err != nil {
		return res, err
	}
	if err := reindex(cfg.IndexPath, records); err != nil {
		return res, err
	}
	log.Debug().Str("stage", "merge").Int("before", before).Int("after", len(records)).Msg("merged record set")

	res.RecordsAdded = len(records) - before
	res.RecordsTotal = len(records)
	return res, nil
}

func reindex(indexPath string, records []homework.Record) error {
	if indexPath == "" {
		return nil
	}
	idx, err := search.Open(indexPath)
	if err != nil {
		return err
	}
	defer idx.Close()
	return idx.Rebuild(records)
}

// RemoveFile withdraws one document: provenance rows disappear, orphaned
// records with them, and the index follows the store.
func RemoveFile(cfg Config, fileID string) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RemoveFile(fileID); err != nil {
		return err
	}
	records, err := st.Load()
	if err != nil {
		return err
	}
	log.Debug().Str("stage", "remove").Str("file_id", fileID).Int("remaining", len(records)).Msg("removed document")
	return reindex(cfg.IndexPath, records)
}
