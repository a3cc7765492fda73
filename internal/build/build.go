// Package build orchestrates the content pipeline: discover entries,
// validate front matter, compile markdown, resolve assets, compute
// derived fields, aggregate collections, and emit the static artifacts.
// Each entry's stages run sequentially; entries fan out concurrently.
package build

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linqiu/meadow/internal/assets"
	"github.com/linqiu/meadow/internal/content"
	"github.com/linqiu/meadow/internal/markup"
	"github.com/linqiu/meadow/internal/schema"
)

const defaultConcurrency = 8

// Options configures one build invocation. All state lives here or on
// the builder it creates; nothing is package-global, so builds are
// repeatable in-process.
type Options struct {
	// ContentDir is the content root holding blog/, projects/ and basic/.
	ContentDir string
	// OutDir receives data files, copied assets and the search index.
	OutDir string
	// Base is the public URL prefix assets are served under.
	Base string
	// Concurrency caps in-flight entries; 0 means the default.
	Concurrency int
	Logger      *slog.Logger
	// Now supplies the build timestamp; nil means time.Now.
	Now func() time.Time
}

// Result is a successful build's output.
type Result struct {
	Collections content.Collections
	Warnings    []assets.Warning
}

// CompileError reports markup that could not be parsed. It is fatal for
// the whole build.
type CompileError struct {
	Collection string
	Slug       string
	Err        error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s/%s: compile: %v", e.Collection, e.Slug, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

type entryRef struct {
	collection string
	dir        string
	slug       string
	file       string
}

type builder struct {
	opts      Options
	staticDir string
}

// Run executes one full build. Fatal errors (validation, compilation,
// index write) abort before the data files consumers read are emitted;
// unresolved asset references are the only sanctioned partial success.
func Run(opts Options) (*Result, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Base == "" {
		opts.Base = "/static"
	}

	b := &builder{
		opts:      opts,
		staticDir: filepath.Join(opts.OutDir, "static"),
	}

	postRefs, err := b.discover(content.CollectionBlog)
	if err != nil {
		return nil, err
	}
	projectRefs, err := b.discover(content.CollectionProjects)
	if err != nil {
		return nil, err
	}
	basicRefs, err := b.discover(content.CollectionBasic)
	if err != nil {
		return nil, err
	}

	posts := make([]content.Post, len(postRefs))
	projects := make([]content.Project, len(projectRefs))
	basics := make([]content.BasicInfo, len(basicRefs))
	warns := make([][]assets.Warning, len(postRefs)+len(projectRefs)+len(basicRefs))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, ref := range postRefs {
		i, ref := i, ref
		g.Go(func() error {
			p, w, err := b.buildPost(ref)
			if err != nil {
				return err
			}
			posts[i], warns[i] = p, w
			return nil
		})
	}
	for i, ref := range projectRefs {
		i, ref := i, ref
		g.Go(func() error {
			p, w, err := b.buildProject(ref)
			if err != nil {
				return err
			}
			projects[i], warns[len(postRefs)+i] = p, w
			return nil
		})
	}
	for i, ref := range basicRefs {
		i, ref := i, ref
		g.Go(func() error {
			info, w, err := b.buildBasic(ref)
			if err != nil {
				return err
			}
			basics[i], warns[len(postRefs)+len(projectRefs)+i] = info, w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cols := content.Collections{Posts: posts, Projects: projects, Basic: basics}
	if err := checkSlugs(cols, postRefs, projectRefs, basicRefs); err != nil {
		return nil, err
	}
	cols.Sort()

	var all []assets.Warning
	for _, w := range warns {
		all = append(all, w...)
	}

	if err := b.emit(cols); err != nil {
		return nil, err
	}

	opts.Logger.Info("build complete",
		"posts", len(cols.Posts),
		"projects", len(cols.Projects),
		"basic", len(cols.Basic),
		"asset_warnings", len(all),
	)

	return &Result{Collections: cols, Warnings: all}, nil
}

// discover lists the entry folders of one collection. Each folder must
// hold exactly one markup file; folders without one are skipped with a
// warning, more than one fails validation.
func (b *builder) discover(collection string) ([]entryRef, error) {
	root := filepath.Join(b.opts.ContentDir, collection)
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	var refs []entryRef
	for _, de := range dirEntries {
		if !de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, de.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		var markupFiles []string
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			if strings.HasSuffix(f.Name(), ".md") {
				markupFiles = append(markupFiles, filepath.Join(dir, f.Name()))
			}
		}
		switch len(markupFiles) {
		case 0:
			b.opts.Logger.Warn("entry folder has no markup file, skipping",
				"collection", collection, "dir", dir)
		case 1:
			refs = append(refs, entryRef{
				collection: collection,
				dir:        dir,
				slug:       de.Name(),
				file:       markupFiles[0],
			})
		default:
			return nil, &schema.ValidationError{
				Collection: collection,
				Slug:       de.Name(),
				Field:      "body",
				Reason:     fmt.Sprintf("expected one markup file, found %d", len(markupFiles)),
			}
		}
	}
	return refs, nil
}

func (b *builder) buildPost(ref entryRef) (content.Post, []assets.Warning, error) {
	source, err := os.ReadFile(ref.file)
	if err != nil {
		return content.Post{}, nil, fmt.Errorf("%s/%s: %w", ref.collection, ref.slug, err)
	}
	fm, body, err := schema.SplitPost(source)
	if err != nil {
		return content.Post{}, nil, &schema.ValidationError{
			Collection: ref.collection, Slug: ref.slug,
			Field: "front matter", Reason: err.Error(),
		}
	}
	post, err := schema.ValidatePost(fm, ref.slug)
	if err != nil {
		return content.Post{}, nil, err
	}

	html, plain, resolver, err := b.compileEntry(ref, post.Slug, body)
	if err != nil {
		return content.Post{}, nil, err
	}

	post.Image = resolver.ResolveCover(post.Image)
	post.Content = string(body)
	post.Body = html
	post.ReadingTime = content.ReadingTime(plain)
	return post, resolver.Warnings(), nil
}

func (b *builder) buildProject(ref entryRef) (content.Project, []assets.Warning, error) {
	source, err := os.ReadFile(ref.file)
	if err != nil {
		return content.Project{}, nil, fmt.Errorf("%s/%s: %w", ref.collection, ref.slug, err)
	}
	fm, body, err := schema.SplitProject(source)
	if err != nil {
		return content.Project{}, nil, &schema.ValidationError{
			Collection: ref.collection, Slug: ref.slug,
			Field: "front matter", Reason: err.Error(),
		}
	}
	project, err := schema.ValidateProject(fm, ref.slug)
	if err != nil {
		return content.Project{}, nil, err
	}

	html, plain, resolver, err := b.compileEntry(ref, project.Slug, body)
	if err != nil {
		return content.Project{}, nil, err
	}

	project.Image = resolver.ResolveCover(project.Image)
	project.Content = string(body)
	project.Body = html
	project.ReadingTime = content.ReadingTime(plain)
	return project, resolver.Warnings(), nil
}

func (b *builder) buildBasic(ref entryRef) (content.BasicInfo, []assets.Warning, error) {
	source, err := os.ReadFile(ref.file)
	if err != nil {
		return content.BasicInfo{}, nil, fmt.Errorf("%s/%s: %w", ref.collection, ref.slug, err)
	}
	fm, body, err := schema.SplitBasic(source)
	if err != nil {
		return content.BasicInfo{}, nil, &schema.ValidationError{
			Collection: ref.collection, Slug: ref.slug,
			Field: "front matter", Reason: err.Error(),
		}
	}
	info, err := schema.ValidateBasic(fm, ref.slug)
	if err != nil {
		return content.BasicInfo{}, nil, err
	}

	switch info.Kind {
	case content.KindProfile:
		resolver := b.newResolver(ref, info.Slug)
		info.Profile.Avatar = resolver.ResolveCover(info.Profile.Avatar)
		return info, resolver.Warnings(), nil
	case content.KindAbout:
		html, _, resolver, err := b.compileEntry(ref, info.Slug, body)
		if err != nil {
			return content.BasicInfo{}, nil, err
		}
		info.About.Content = string(body)
		info.About.Body = html
		return info, resolver.Warnings(), nil
	}
	return info, nil, nil
}

func (b *builder) newResolver(ref entryRef, slug string) *assets.Resolver {
	return assets.NewResolver(ref.dir, ref.collection, slug, b.staticDir, b.opts.Base, b.opts.Logger)
}

// compileEntry runs the shared compile-then-resolve stages: markdown to
// HTML, inline reference discovery on the raw body, copy+rewrite into
// the entry's namespace, then the cleanup sweep.
func (b *builder) compileEntry(ref entryRef, slug string, body []byte) (string, string, *assets.Resolver, error) {
	res, err := markup.Compile(body)
	if err != nil {
		return "", "", nil, &CompileError{Collection: ref.collection, Slug: slug, Err: err}
	}

	resolver := b.newResolver(ref, slug)
	mapping := make(map[string]string)
	for _, r := range assets.Discover(string(body)) {
		if pub, ok := resolver.Resolve(r); ok {
			mapping[r] = pub
		}
	}
	html := assets.Rewrite(string(res.HTML), mapping)
	html = resolver.Sweep(html)
	return html, res.Plain, resolver, nil
}

func checkSlugs(cols content.Collections, postRefs, projectRefs, basicRefs []entryRef) error {
	check := func(collection string, slugs []string, refs []entryRef) error {
		index := make(map[string]string, len(slugs))
		for i, slug := range slugs {
			if first, ok := index[slug]; ok {
				return &schema.ValidationError{
					Collection: collection,
					Slug:       slug,
					Field:      "slug",
					Reason:     fmt.Sprintf("duplicate slug claimed by %s and %s", first, refs[i].dir),
				}
			}
			index[slug] = refs[i].dir
		}
		return nil
	}

	postSlugs := make([]string, len(cols.Posts))
	for i, p := range cols.Posts {
		postSlugs[i] = p.Slug
	}
	if err := check(content.CollectionBlog, postSlugs, postRefs); err != nil {
		return err
	}
	projectSlugs := make([]string, len(cols.Projects))
	for i, p := range cols.Projects {
		projectSlugs[i] = p.Slug
	}
	if err := check(content.CollectionProjects, projectSlugs, projectRefs); err != nil {
		return err
	}
	basicSlugs := make([]string, len(cols.Basic))
	for i, b := range cols.Basic {
		basicSlugs[i] = b.Slug
	}
	return check(content.CollectionBasic, basicSlugs, basicRefs)
}
