package schema

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/linqiu/meadow/internal/content"
)

// SplitBasic separates a basic-info entry's front matter from its body.
// The basic collection is loosely typed, so the header is decoded into a
// raw map and dispatched on its "type" field during validation.
func SplitBasic(source []byte) (map[string]any, []byte, error) {
	lines := strings.Split(string(source), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return map[string]any{}, source, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, nil, errors.New("parse front matter: missing closing ---")
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
		return nil, nil, fmt.Errorf("parse front matter: %w", err)
	}
	if fm == nil {
		fm = map[string]any{}
	}

	body := strings.Join(lines[end+1:], "\n")
	body = strings.TrimPrefix(body, "\n")
	return fm, []byte(body), nil
}

// ValidateBasic dispatches a raw basic-info record to its variant.
// Null and empty-string fields are stripped first so downstream consumers
// never see sentinel empties.
func ValidateBasic(raw map[string]any, dirSlug string) (content.BasicInfo, error) {
	fields := stripEmpty(raw)

	kind, ok := fields["type"].(string)
	if !ok {
		return content.BasicInfo{}, errf(content.CollectionBasic, dirSlug, "type", "missing required field")
	}

	switch content.BasicKind(kind) {
	case content.KindProfile:
		p := content.Profile{
			Name:      stringField(fields, "name"),
			Avatar:    stringField(fields, "avatar"),
			Bio:       stringField(fields, "bio"),
			Email:     stringField(fields, "email"),
			GithubURL: stringField(fields, "github_url"),
			Location:  stringField(fields, "location"),
		}
		if p.Name == "" {
			return content.BasicInfo{}, errf(content.CollectionBasic, dirSlug, "name", "missing required field")
		}
		return content.BasicInfo{Slug: dirSlug, Kind: content.KindProfile, Profile: &p}, nil

	case content.KindAbout:
		a := content.About{Title: stringField(fields, "title")}
		if a.Title == "" {
			return content.BasicInfo{}, errf(content.CollectionBasic, dirSlug, "title", "missing required field")
		}
		return content.BasicInfo{Slug: dirSlug, Kind: content.KindAbout, About: &a}, nil

	default:
		return content.BasicInfo{}, errf(content.CollectionBasic, dirSlug, "type",
			"unknown type %q: expected profile or about", kind)
	}
}

func stripEmpty(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		}
		out[k] = v
	}
	return out
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
