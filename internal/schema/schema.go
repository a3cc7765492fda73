// Package schema validates front matter against each collection's schema,
// applies defaults, and normalizes the result into content model values.
// Validation is pure: a raw record either normalizes cleanly or fails with
// a ValidationError naming the offending field.
package schema

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/linqiu/meadow/internal/content"
)

const (
	maxTitleLen       = 99
	maxDescriptionLen = 999

	defaultProjectStatus = "进行中"
)

// ValidationError reports a front-matter field that failed its collection
// schema. It is fatal for the whole build.
type ValidationError struct {
	Collection string
	Slug       string
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s/%s: field %q: %s", e.Collection, e.Slug, e.Field, e.Reason)
}

func errf(collection, slug, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Collection: collection,
		Slug:       slug,
		Field:      field,
		Reason:     fmt.Sprintf(format, args...),
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PostFrontMatter is the raw metadata header of a blog entry.
type PostFrontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Date        string   `yaml:"date"`
	Image       string   `yaml:"image"`
	Description string   `yaml:"description"`
	Categories  []string `yaml:"categories"`
	Featured    bool     `yaml:"featured"`
}

// ProjectFrontMatter is the raw metadata header of a project entry.
type ProjectFrontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Status      string   `yaml:"status"`
	Image       string   `yaml:"image"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	GithubURL   string   `yaml:"github_url"`
	DemoURL     string   `yaml:"demo_url"`
	Stars       int      `yaml:"stars"`
	Forks       int      `yaml:"forks"`
}

// SplitPost separates a blog entry's front matter from its body.
func SplitPost(source []byte) (PostFrontMatter, []byte, error) {
	var fm PostFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return PostFrontMatter{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return fm, body, nil
}

// SplitProject separates a project entry's front matter from its body.
func SplitProject(source []byte) (ProjectFrontMatter, []byte, error) {
	var fm ProjectFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return ProjectFrontMatter{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return fm, body, nil
}

// ValidatePost normalizes a post's front matter. dirSlug is the entry's
// folder name, used when no explicit slug override is present.
func ValidatePost(fm PostFrontMatter, dirSlug string) (content.Post, error) {
	slug, err := resolveSlug(content.CollectionBlog, dirSlug, fm.Slug)
	if err != nil {
		return content.Post{}, err
	}
	if err := checkTitle(content.CollectionBlog, slug, fm.Title); err != nil {
		return content.Post{}, err
	}
	if len(fm.Description) > maxDescriptionLen {
		return content.Post{}, errf(content.CollectionBlog, slug, "description",
			"exceeds %d characters", maxDescriptionLen)
	}
	if fm.Date == "" {
		return content.Post{}, errf(content.CollectionBlog, slug, "date", "missing required field")
	}
	date, err := parseDate(fm.Date)
	if err != nil {
		return content.Post{}, errf(content.CollectionBlog, slug, "date",
			"invalid date %q: expected ISO date", fm.Date)
	}
	categories := fm.Categories
	if categories == nil {
		categories = []string{}
	}
	return content.Post{
		Slug:        slug,
		Title:       fm.Title,
		Description: fm.Description,
		Date:        date,
		Image:       fm.Image,
		Categories:  categories,
		Featured:    fm.Featured,
	}, nil
}

// ValidateProject normalizes a project's front matter.
func ValidateProject(fm ProjectFrontMatter, dirSlug string) (content.Project, error) {
	slug, err := resolveSlug(content.CollectionProjects, dirSlug, fm.Slug)
	if err != nil {
		return content.Project{}, err
	}
	if err := checkTitle(content.CollectionProjects, slug, fm.Title); err != nil {
		return content.Project{}, err
	}
	if len(fm.Description) > maxDescriptionLen {
		return content.Project{}, errf(content.CollectionProjects, slug, "description",
			"exceeds %d characters", maxDescriptionLen)
	}
	if fm.Stars < 0 {
		return content.Project{}, errf(content.CollectionProjects, slug, "stars", "must not be negative")
	}
	if fm.Forks < 0 {
		return content.Project{}, errf(content.CollectionProjects, slug, "forks", "must not be negative")
	}
	status := fm.Status
	if status == "" {
		status = defaultProjectStatus
	}
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	return content.Project{
		Slug:        slug,
		Title:       fm.Title,
		Description: fm.Description,
		Status:      status,
		Image:       fm.Image,
		Tags:        tags,
		GithubURL:   fm.GithubURL,
		DemoURL:     fm.DemoURL,
		Stars:       fm.Stars,
		Forks:       fm.Forks,
	}, nil
}

func resolveSlug(collection, dirSlug, override string) (string, error) {
	slug := dirSlug
	if override != "" {
		slug = override
	}
	if !slugPattern.MatchString(slug) {
		return "", errf(collection, dirSlug, "slug",
			"invalid slug %q: must be lowercase letters, digits and hyphens", slug)
	}
	return slug, nil
}

func checkTitle(collection, slug, title string) error {
	if title == "" {
		return errf(collection, slug, "title", "missing required field")
	}
	if len(title) > maxTitleLen {
		return errf(collection, slug, "title", "exceeds %d characters", maxTitleLen)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
