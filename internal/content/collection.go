package content

import "sort"

// Collections groups every successfully built entry by collection.
type Collections struct {
	Posts    []Post
	Projects []Project
	Basic    []BasicInfo
}

// Sort imposes the stable emission order: posts date-descending,
// projects by title, basic records by slug. Consumers may re-sort; the
// order here only keeps emitted artifacts byte-stable across builds.
func (c *Collections) Sort() {
	sort.SliceStable(c.Posts, func(i, j int) bool {
		return c.Posts[i].Date.After(c.Posts[j].Date)
	})
	sort.SliceStable(c.Projects, func(i, j int) bool {
		return c.Projects[i].Title < c.Projects[j].Title
	})
	sort.SliceStable(c.Basic, func(i, j int) bool {
		return c.Basic[i].Slug < c.Basic[j].Slug
	})
}
