package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPost(t *testing.T) {
	source := []byte("---\ntitle: \"Hello\"\ndate: \"2025-01-01\"\ncategories:\n  - go\n---\n\nbody text\n")

	fm, body, err := SplitPost(source)
	require.NoError(t, err)

	assert.Equal(t, "Hello", fm.Title)
	assert.Equal(t, "2025-01-01", fm.Date)
	assert.Equal(t, []string{"go"}, fm.Categories)
	assert.Equal(t, "body text\n", string(body))
}

func TestValidatePost(t *testing.T) {
	post, err := ValidatePost(PostFrontMatter{Title: "Hello", Date: "2025-01-01"}, "hello")
	require.NoError(t, err)

	assert.Equal(t, "hello", post.Slug)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "2025-01-01", post.Date.Format("2006-01-02"))
	assert.NotNil(t, post.Categories, "categories must default to an empty slice")
	assert.Empty(t, post.Categories)
	assert.False(t, post.Featured)
}

func TestValidatePostSlugOverride(t *testing.T) {
	post, err := ValidatePost(PostFrontMatter{Title: "t", Date: "2025-01-01", Slug: "custom-slug"}, "folder-name")
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", post.Slug)
}

func TestValidatePostErrors(t *testing.T) {
	tests := []struct {
		name  string
		fm    PostFrontMatter
		field string
	}{
		{"missing title", PostFrontMatter{Date: "2025-01-01"}, "title"},
		{"title too long", PostFrontMatter{Title: strings.Repeat("x", 100), Date: "2025-01-01"}, "title"},
		{"missing date", PostFrontMatter{Title: "t"}, "date"},
		{"bad date", PostFrontMatter{Title: "t", Date: "yesterday"}, "date"},
		{"description too long", PostFrontMatter{Title: "t", Date: "2025-01-01", Description: strings.Repeat("x", 1000)}, "description"},
		{"bad slug override", PostFrontMatter{Title: "t", Date: "2025-01-01", Slug: "Bad Slug!"}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePost(tt.fm, "entry")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, "blog", verr.Collection)
		})
	}
}

func TestValidateProjectDefaults(t *testing.T) {
	project, err := ValidateProject(ProjectFrontMatter{Title: "Tool"}, "tool")
	require.NoError(t, err)

	assert.Equal(t, "进行中", project.Status)
	assert.NotNil(t, project.Tags, "tags must default to an empty slice")
	assert.Empty(t, project.Tags)
	assert.Zero(t, project.Stars)
	assert.Zero(t, project.Forks)
}

func TestValidateProjectErrors(t *testing.T) {
	_, err := ValidateProject(ProjectFrontMatter{}, "tool")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Contains(t, verr.Reason, "missing")

	_, err = ValidateProject(ProjectFrontMatter{Title: "t", Stars: -1}, "tool")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "stars", verr.Field)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Collection: "projects", Slug: "tool", Field: "title", Reason: "missing required field"}
	assert.Equal(t, `projects/tool: field "title": missing required field`, err.Error())
}
