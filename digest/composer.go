// Package digest composes and delivers the weekly per-category summary of
// new posts to category subscribers.
package digest

import (
	"time"

	"github.com/Luismorlan/newsportal/model"
)

// PostSource is the post-store collaborator the composer reads from.
type PostSource interface {
	PostsInCategorySince(categoryID string, since time.Time) ([]*model.Post, error)
}

// RenderedEntry is one digest line for one post. Entries are transient,
// generated and consumed within a single run.
type RenderedEntry struct {
	Title      string
	AuthorName string
	CreatedAt  time.Time
	Preview    string
	URL        string
}

// Composer turns a (category, time window) pair into rendered digest
// entries. BaseURL is the site origin used to build absolute post URLs.
type Composer struct {
	Posts   PostSource
	BaseURL string
}

func NewComposer(posts PostSource, baseURL string) *Composer {
	return &Composer{Posts: posts, BaseURL: baseURL}
}

// Compose returns one entry per post created in the category at or after
// since, newest first. An empty result means the caller should skip sending,
// subscribers never receive empty digests.
func (c *Composer) Compose(category *model.Category, since time.Time) ([]RenderedEntry, error) {
	posts, err := c.Posts.PostsInCategorySince(category.Id, since)
	if err != nil {
		return nil, err
	}

	entries := make([]RenderedEntry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, RenderedEntry{
			Title:      post.Title,
			AuthorName: post.Author.User.Name,
			CreatedAt:  post.CreatedAt,
			Preview:    post.Preview(),
			URL:        c.BaseURL + post.AbsolutePath(),
		})
	}
	return entries, nil
}
