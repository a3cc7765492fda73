package build

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqiu/meadow/internal/schema"
	"github.com/linqiu/meadow/internal/search"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		ContentDir: t.TempDir(),
		OutDir:     t.TempDir(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func writeEntry(t *testing.T, contentDir, collection, dir, markup string) string {
	t.Helper()
	entryDir := filepath.Join(contentDir, collection, dir)
	require.NoError(t, os.MkdirAll(entryDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(entryDir, "index.md"), []byte(markup), 0o644))
	return entryDir
}

func writeAsset(t *testing.T, entryDir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(entryDir, name), data, 0o644))
}

func readSearchIndex(t *testing.T, outDir string) []search.Record {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outDir, "search.json"))
	require.NoError(t, err)
	var records []search.Record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

const helloPost = "---\ntitle: \"Hello\"\ndate: \"2025-01-01\"\n---\n\nsome text\n\n![alt](./img.png)\n"

func TestBuildResolvesInlineAsset(t *testing.T) {
	opts := testOptions(t)
	entryDir := writeEntry(t, opts.ContentDir, "blog", "hello", helloPost)
	writeAsset(t, entryDir, "img.png", []byte("png-bytes"))

	result, err := Run(opts)
	require.NoError(t, err)
	require.Len(t, result.Collections.Posts, 1)

	post := result.Collections.Posts[0]
	assert.Equal(t, "hello", post.Slug)
	assert.Regexp(t, `src="/static/blog/hello/img-[0-9a-f]{8}\.png"`, post.Body)
	assert.NotContains(t, post.Body, "./img.png")
	assert.Empty(t, result.Warnings)

	// the copied asset is on disk under the entry's namespace
	files, err := filepath.Glob(filepath.Join(opts.OutDir, "static", "blog", "hello", "img-*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	records := readSearchIndex(t, opts.OutDir)
	require.Len(t, records, 1)
	assert.Equal(t, search.Record{
		Title:      "Hello",
		Date:       "2025-01-01",
		Slug:       "hello",
		Type:       "blog",
		Categories: []string{},
	}, records[0])
}

func TestBuildMissingAssetWarnsAndContinues(t *testing.T) {
	opts := testOptions(t)
	writeEntry(t, opts.ContentDir, "blog", "hello", helloPost)

	result, err := Run(opts)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "hello", result.Warnings[0].Slug)
	assert.Equal(t, "./img.png", result.Warnings[0].Ref)

	// the unresolved reference stays verbatim in the compiled body
	assert.Contains(t, result.Collections.Posts[0].Body, "./img.png")
}

func TestBuildDuplicateSlugFails(t *testing.T) {
	opts := testOptions(t)
	writeEntry(t, opts.ContentDir, "blog", "first",
		"---\ntitle: \"One\"\ndate: \"2025-01-01\"\nslug: same-slug\n---\nbody\n")
	writeEntry(t, opts.ContentDir, "blog", "second",
		"---\ntitle: \"Two\"\ndate: \"2025-01-02\"\nslug: same-slug\n---\nbody\n")

	_, err := Run(opts)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "slug", verr.Field)
	assert.Equal(t, "same-slug", verr.Slug)
	assert.Contains(t, verr.Reason, "first")
	assert.Contains(t, verr.Reason, "second")
}

func TestBuildMissingTitleFails(t *testing.T) {
	opts := testOptions(t)
	writeEntry(t, opts.ContentDir, "projects", "tool",
		"---\ndescription: \"no title\"\n---\nbody\n")

	_, err := Run(opts)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Contains(t, verr.Reason, "missing")

	// fatal errors stop artifact emission entirely
	_, statErr := os.Stat(filepath.Join(opts.OutDir, "search.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildSearchIndexWriteFailureIsFatal(t *testing.T) {
	opts := testOptions(t)
	writeEntry(t, opts.ContentDir, "blog", "hello",
		"---\ntitle: \"Hello\"\ndate: \"2025-01-01\"\n---\nbody\n")

	// occupy the index path with a directory so the write fails
	require.NoError(t, os.MkdirAll(filepath.Join(opts.OutDir, "search.json"), 0o755))

	_, err := Run(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search index")

	// the degraded build publishes no collection data either
	_, statErr := os.Stat(filepath.Join(opts.OutDir, "data", "posts.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildEmitsCollectionData(t *testing.T) {
	opts := testOptions(t)
	writeEntry(t, opts.ContentDir, "blog", "older",
		"---\ntitle: \"Older\"\ndate: \"2024-05-01\"\n---\nbody\n")
	writeEntry(t, opts.ContentDir, "blog", "newer",
		"---\ntitle: \"Newer\"\ndate: \"2025-03-01\"\ncategories:\n  - go\n---\nbody with enough words\n")
	writeEntry(t, opts.ContentDir, "projects", "tool",
		"---\ntitle: \"Tool\"\ntags:\n  - cli\nstars: 12\n---\nproject body\n")
	writeEntry(t, opts.ContentDir, "basic", "about",
		"---\ntype: about\ntitle: 关于\n---\n\nabout body\n")
	writeEntry(t, opts.ContentDir, "basic", "profile",
		"---\ntype: profile\nname: 林秋\n---\n")

	result, err := Run(opts)
	require.NoError(t, err)

	// posts are emitted date-descending
	require.Len(t, result.Collections.Posts, 2)
	assert.Equal(t, "newer", result.Collections.Posts[0].Slug)
	assert.Equal(t, "older", result.Collections.Posts[1].Slug)
	assert.Equal(t, "< 1 分钟", result.Collections.Posts[0].ReadingTime)

	require.Len(t, result.Collections.Projects, 1)
	assert.Equal(t, "进行中", result.Collections.Projects[0].Status)
	assert.Equal(t, 12, result.Collections.Projects[0].Stars)

	var posts []map[string]any
	data, err := os.ReadFile(filepath.Join(opts.OutDir, "data", "posts.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0]["slug"])

	var basic []map[string]any
	data, err = os.ReadFile(filepath.Join(opts.OutDir, "data", "basic.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &basic))
	require.Len(t, basic, 2)
	// the tagged union flattens to records discriminated by "type"
	types := []any{basic[0]["type"], basic[1]["type"]}
	assert.ElementsMatch(t, []any{"about", "profile"}, types)

	records := readSearchIndex(t, opts.OutDir)
	assert.Len(t, records, 5)
}

func TestBuildCoverImageResolved(t *testing.T) {
	opts := testOptions(t)
	entryDir := writeEntry(t, opts.ContentDir, "blog", "hello",
		"---\ntitle: \"Hello\"\ndate: \"2025-01-01\"\nimage: \"./cover.jpg\"\n---\nbody\n")
	writeAsset(t, entryDir, "cover.jpg", []byte("jpg-bytes"))

	result, err := Run(opts)
	require.NoError(t, err)

	assert.Regexp(t, `^/static/blog/hello/cover-[0-9a-f]{8}\.jpg$`,
		result.Collections.Posts[0].Image)
}

func TestBuildWikilinksResolve(t *testing.T) {
	opts := testOptions(t)
	writeEntry(t, opts.ContentDir, "blog", "hello",
		"---\ntitle: \"Hello\"\ndate: \"2025-01-01\"\n---\nsee [[other-post]]\n")

	result, err := Run(opts)
	require.NoError(t, err)

	assert.Contains(t, result.Collections.Posts[0].Body, `href="/blog/other-post"`)
}

func TestBuildRawBodyPreserved(t *testing.T) {
	opts := testOptions(t)
	writeEntry(t, opts.ContentDir, "blog", "hello", helloPost)

	result, err := Run(opts)
	require.NoError(t, err)

	// the raw body keeps the original reference for the copy-source export
	assert.Contains(t, result.Collections.Posts[0].Content, "![alt](./img.png)")
}

func TestBuildMultipleMarkupFilesFails(t *testing.T) {
	opts := testOptions(t)
	entryDir := writeEntry(t, opts.ContentDir, "blog", "hello", helloPost)
	require.NoError(t, os.WriteFile(filepath.Join(entryDir, "extra.md"), []byte("# extra"), 0o644))

	_, err := Run(opts)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "one markup file")
}

func TestBuildEmptyContentRoot(t *testing.T) {
	opts := testOptions(t)

	result, err := Run(opts)
	require.NoError(t, err)

	assert.Empty(t, result.Collections.Posts)

	// empty collections still serialize as []
	data, err := os.ReadFile(filepath.Join(opts.OutDir, "data", "posts.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
