// Package content defines the entry model the build pipeline produces:
// posts, projects and basic-info records, grouped into per-collection
// tables consumed by the rendering layer and the search index.
package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collection names match the subdirectories of the content root.
const (
	CollectionBlog     = "blog"
	CollectionProjects = "projects"
	CollectionBasic    = "basic"
)

// Post is one published blog entry.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Image       string    `json:"image,omitempty"`
	Categories  []string  `json:"categories"`
	Featured    bool      `json:"featured"`
	Content     string    `json:"content"`
	Body        string    `json:"body"`
	ReadingTime string    `json:"readingTime"`
}

// Project is one portfolio write-up.
type Project struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Image       string   `json:"image,omitempty"`
	Tags        []string `json:"tags"`
	GithubURL   string   `json:"github_url,omitempty"`
	DemoURL     string   `json:"demo_url,omitempty"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	Content     string   `json:"content"`
	Body        string   `json:"body"`
	ReadingTime string   `json:"readingTime"`
}

// BasicKind discriminates the two basic-info variants.
type BasicKind string

const (
	KindProfile BasicKind = "profile"
	KindAbout   BasicKind = "about"
)

// Profile holds the site owner's card shown on the landing page.
type Profile struct {
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Email     string `json:"email,omitempty"`
	GithubURL string `json:"github_url,omitempty"`
	Location  string `json:"location,omitempty"`
}

// About holds the about page.
type About struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Body    string `json:"body"`
}

// BasicInfo is a tagged union: exactly one of Profile or About is set,
// according to Kind.
type BasicInfo struct {
	Slug    string
	Kind    BasicKind
	Profile *Profile
	About   *About
}

// MarshalJSON flattens the active variant into a single record with a
// "type" tag, the shape the rendering layer reads from basic.json.
func (b BasicInfo) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case KindProfile:
		if b.Profile == nil {
			return nil, fmt.Errorf("basic %q: profile variant is nil", b.Slug)
		}
		return json.Marshal(struct {
			Slug string    `json:"slug"`
			Type BasicKind `json:"type"`
			*Profile
		}{b.Slug, b.Kind, b.Profile})
	case KindAbout:
		if b.About == nil {
			return nil, fmt.Errorf("basic %q: about variant is nil", b.Slug)
		}
		return json.Marshal(struct {
			Slug string    `json:"slug"`
			Type BasicKind `json:"type"`
			*About
		}{b.Slug, b.Kind, b.About})
	default:
		return nil, fmt.Errorf("basic %q: unknown kind %q", b.Slug, b.Kind)
	}
}

// Title returns the display title of the active variant.
func (b BasicInfo) Title() string {
	switch b.Kind {
	case KindProfile:
		if b.Profile != nil {
			return b.Profile.Name
		}
	case KindAbout:
		if b.About != nil {
			return b.About.Title
		}
	}
	return ""
}
