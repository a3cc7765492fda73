// Package assets discovers relative asset references in entry bodies,
// copies the referenced files into a collection-scoped public directory
// under content-hashed names, and rewrites every reference to the final
// public path. The regex matching is deliberately isolated behind
// Discover and Rewrite so the strategy can be swapped for an AST walk
// without touching the rest of the pipeline.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// hashLen is the number of hex characters kept from the content digest.
const hashLen = 8

// intermediateRoot is the temporary asset root an upstream compilation
// stage may emit paths under; the sweep re-homes anything left there.
const intermediateRoot = "/assets/"

var (
	mdImagePattern   = regexp.MustCompile(`!\[[^\]]*\]\((\.\.?/[^)\s]+)\)`)
	htmlImagePattern = regexp.MustCompile(`<img[^>]*\ssrc=["'](\.\.?/[^"']+)["']`)
	attrPattern      = regexp.MustCompile(`(?:src|href)=["']([^"']+)["']`)
	hashedNameSuffix = regexp.MustCompile(`^(.+)-[0-9a-f]{` + strconv.Itoa(hashLen) + `}(\.[^.]+)$`)
)

// Discover returns the distinct relative asset references in body, in
// order of first appearance. It matches markdown image syntax and inline
// HTML img tags whose target starts with ./ or ../.
func Discover(body string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, pat := range []*regexp.Regexp{mdImagePattern, htmlImagePattern} {
		for _, m := range pat.FindAllStringSubmatch(body, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				refs = append(refs, m[1])
			}
		}
	}
	return refs
}

// Rewrite replaces every occurrence of each mapped reference with its
// public path. Longer references are replaced first so "./img.png" never
// clobbers the tail of "../img.png".
func Rewrite(text string, mapping map[string]string) string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		text = strings.ReplaceAll(text, k, mapping[k])
	}
	return text
}

// Warning records one asset reference that could not be resolved. The
// reference is left as-is in the compiled output and the build continues.
type Warning struct {
	Collection string
	Slug       string
	Ref        string
	Err        error
}

type resolved struct {
	public string
	ok     bool
}

// Resolver copies one entry's assets into its public namespace. It holds
// a per-entry cache, so repeated references to the same relative path
// read the underlying file once and always yield the same public path.
type Resolver struct {
	entryDir   string
	collection string
	slug       string
	staticDir  string
	base       string
	logger     *slog.Logger

	cache    map[string]resolved
	warnings []Warning
}

// NewResolver returns a resolver scoped to one entry. staticDir is the
// filesystem destination root; base is the public URL prefix it is
// served under.
func NewResolver(entryDir, collection, slug, staticDir, base string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		entryDir:   entryDir,
		collection: collection,
		slug:       slug,
		staticDir:  staticDir,
		base:       base,
		logger:     logger,
		cache:      make(map[string]resolved),
	}
}

// Resolve copies the file behind a relative reference into the entry's
// public namespace and returns its public path. A second call with the
// same reference is a cache hit and does not touch the filesystem.
func (r *Resolver) Resolve(ref string) (string, bool) {
	if c, ok := r.cache[ref]; ok {
		return c.public, c.ok
	}
	return r.resolveFile(ref, ref)
}

// ResolveCover resolves a declared cover image. External URLs and paths
// already outside the entry folder pass through unchanged; a relative
// path that cannot be read is returned as-is after warning.
func (r *Resolver) ResolveCover(cover string) string {
	if !strings.HasPrefix(cover, "./") && !strings.HasPrefix(cover, "../") {
		return cover
	}
	if pub, ok := r.Resolve(cover); ok {
		return pub
	}
	return cover
}

// Warnings returns the unresolved references seen so far.
func (r *Resolver) Warnings() []Warning {
	return r.warnings
}

func (r *Resolver) namespace() string {
	return path.Join(r.base, r.collection, r.slug) + "/"
}

// Sweep is the secondary pass over compiled HTML: it re-homes asset
// paths the primary rewrite did not cover, either bare relative
// references emitted without a ./ prefix, or hashed leftovers under the
// intermediate root or the generic static root. Paths already inside
// the entry's own namespace are skipped.
func (r *Resolver) Sweep(html string) string {
	ns := r.namespace()
	mapping := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(html, -1) {
		p := m[1]
		if _, seen := r.cache[p]; seen {
			continue
		}
		if _, done := mapping[p]; done {
			continue
		}
		switch {
		case strings.HasPrefix(p, ns):
			continue
		case strings.Contains(p, "://") || strings.HasPrefix(p, "data:") ||
			strings.HasPrefix(p, "mailto:") || strings.HasPrefix(p, "#"):
			continue
		case strings.HasPrefix(p, r.base+"/") || strings.HasPrefix(p, intermediateRoot):
			orig := stripHash(path.Base(p))
			if orig == "" {
				continue
			}
			if pub, ok := r.resolveFile(orig, p); ok {
				mapping[p] = pub
			}
		case strings.HasPrefix(p, "/"):
			continue
		case strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../"):
			// already attempted (and warned) by the primary pass
			continue
		default:
			if !isAssetPath(p) {
				continue
			}
			if pub, ok := r.resolveFile(p, p); ok {
				mapping[p] = pub
			}
		}
	}
	return Rewrite(html, mapping)
}

// resolveFile reads the file at rel (relative to the entry folder),
// hashes it, copies it under the entry's namespace, and caches the
// result under key. Failures are non-fatal: they are warned about and
// negatively cached so each broken reference is reported once.
func (r *Resolver) resolveFile(rel, key string) (string, bool) {
	src := filepath.Join(r.entryDir, filepath.FromSlash(rel))
	data, err := os.ReadFile(src)
	if err != nil {
		r.warn(key, err)
		return "", false
	}

	name := hashedName(path.Base(filepath.ToSlash(rel)), data)
	destDir := filepath.Join(r.staticDir, r.collection, r.slug)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		r.warn(key, err)
		return "", false
	}
	if err := os.WriteFile(filepath.Join(destDir, name), data, 0o644); err != nil {
		r.warn(key, err)
		return "", false
	}

	pub := path.Join(r.base, r.collection, r.slug, name)
	r.cache[key] = resolved{public: pub, ok: true}
	return pub, true
}

func (r *Resolver) warn(ref string, err error) {
	r.cache[ref] = resolved{}
	r.warnings = append(r.warnings, Warning{
		Collection: r.collection,
		Slug:       r.slug,
		Ref:        ref,
		Err:        err,
	})
	r.logger.Warn("unresolved asset reference",
		"collection", r.collection,
		"slug", r.slug,
		"ref", ref,
		"error", err,
	)
}

func hashedName(base string, data []byte) string {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])[:hashLen]
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + hash + ext
}

// stripHash undoes hashedName: "img-1a2b3c4d.png" -> "img.png".
// Returns "" when name does not carry a hash suffix.
func stripHash(name string) string {
	m := hashedNameSuffix.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1] + m[2]
}

var assetExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".avif": true, ".ico": true,
	".pdf": true, ".mp4": true, ".webm": true, ".mp3": true,
}

func isAssetPath(p string) bool {
	return assetExts[strings.ToLower(path.Ext(p))]
}
