// Package search maintains a full-text index over stored homework so the
// CLI can answer free-form queries against descriptions and lesson content.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hyperifyio/klassenbuch/internal/homework"
)

// Index wraps a bleve index over homework records.
type Index struct {
	index bleve.Index
}

// indexedRecord is the document shape stored in the index.
type indexedRecord struct {
	Subject       string
	Teacher       string
	Description   string
	LessonContent string
	DueDate       string
}

// Result is one search hit with highlighted fragments per field.
type Result struct {
	ID        string
	Subject   string
	Score     float64
	Fragments map[string][]string
}

// Open opens or creates the index at path.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("Subject", text)
	doc.AddFieldMappingsAt("Teacher", text)
	doc.AddFieldMappingsAt("Description", text)
	doc.AddFieldMappingsAt("LessonContent", text)
	doc.AddFieldMappingsAt("DueDate", bleve.NewTextFieldMapping())

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping("_default", doc)
	return m
}

// Close closes the underlying index.
func (i *Index) Close() error {
	return i.index.Close()
}

// Rebuild replaces the index contents with the given record set. Ingest is
// batch-oriented, so a full rebuild after each merge keeps the index exact
// without tracking deletions.
func (i *Index) Rebuild(records []homework.Record) error {
	batch := i.index.NewBatch()

	ids, err := allDocIDs(i.index)
	if err != nil {
		return err
	}
	for _, id := range ids {
		batch.Delete(id)
	}

	for _, r := range records {
		doc := indexedRecord{
			Subject:       r.Subject,
			Teacher:       r.Teacher,
			Description:   r.Description,
			LessonContent: r.LessonContent,
			DueDate:       r.DueDate.Format("2006-01-02"),
		}
		if err := batch.Index(r.ID, doc); err != nil {
			return fmt.Errorf("index record %s: %w", r.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

func allDocIDs(idx bleve.Index) ([]string, error) {
	count, err := idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count index: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("enumerate index: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Search runs a query-string query (supports quoting, boolean operators and
// fuzzy ~) and returns hits with highlighted fragments.
func (i *Index) Search(queryStr string, limit int) ([]Result, error) {
	query := bleve.NewQueryStringQuery(queryStr)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Highlight = bleve.NewHighlight()
	req.Fields = []string{"Subject"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := Result{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}
		if s, ok := hit.Fields["Subject"].(string); ok {
			r.Subject = s
		}
		results = append(results, r)
	}
	return results, nil
}
