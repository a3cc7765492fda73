package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/linqiu/meadow/internal/content"
	"github.com/linqiu/meadow/internal/search"
)

// emit writes the artifacts consumers read. The search index goes first:
// its write failure is fatal, and ordering it before the data files
// keeps a failed build from publishing a partial artifact set.
func (b *builder) emit(cols content.Collections) error {
	if err := os.MkdirAll(b.opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	records := search.Build(cols, b.opts.Now())
	if err := search.Write(filepath.Join(b.opts.OutDir, "search.json"), records); err != nil {
		return err
	}

	dataDir := filepath.Join(b.opts.OutDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dataDir, "posts.json"), cols.Posts); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dataDir, "projects.json"), cols.Projects); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dataDir, "basic.json"), cols.Basic)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
