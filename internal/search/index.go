// Package search projects the aggregated collections into the flattened
// record set the client-side fuzzy-search dialog consumes. The whole
// index is one JSON array fetched once; no querying happens server-side.
package search

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/linqiu/meadow/internal/content"
)

const dateLayout = "2006-01-02"

// Record is one searchable item. Categories and Tags use omitzero so a
// post's empty-but-present category list serializes as [] while the
// fields stay absent for collections that do not carry them.
type Record struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Slug        string   `json:"slug"`
	Type        string   `json:"type"`
	Categories  []string `json:"categories,omitzero"`
	Tags        []string `json:"tags,omitzero"`
}

// Build flattens every collection into records. Collections without an
// explicit date field fall back to the build timestamp.
func Build(cols content.Collections, now time.Time) []Record {
	records := make([]Record, 0, len(cols.Posts)+len(cols.Projects)+len(cols.Basic))
	buildDate := now.Format(dateLayout)

	for _, p := range cols.Posts {
		categories := p.Categories
		if categories == nil {
			categories = []string{}
		}
		records = append(records, Record{
			Title:       p.Title,
			Description: p.Description,
			Date:        p.Date.Format(dateLayout),
			Slug:        p.Slug,
			Type:        content.CollectionBlog,
			Categories:  categories,
		})
	}

	for _, p := range cols.Projects {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		records = append(records, Record{
			Title:       p.Title,
			Description: p.Description,
			Date:        buildDate,
			Slug:        p.Slug,
			Type:        "project",
			Tags:        tags,
		})
	}

	for _, b := range cols.Basic {
		records = append(records, Record{
			Title: b.Title(),
			Date:  buildDate,
			Slug:  b.Slug,
			Type:  content.CollectionBasic,
		})
	}

	return records
}

// Write serializes the index to path. A write failure is fatal for the
// whole build: a published site silently missing search is treated as a
// corrupt artifact set.
func Write(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	return nil
}
