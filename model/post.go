package model

import (
	"time"

	"gorm.io/gorm"
)

// Post type discriminator. News and articles share the same storage and
// workflow but resolve to different route namespaces.
const (
	PostTypeNews    = "NW"
	PostTypeArticle = "AR"
)

const (
	previewRuneLimit      = 124
	shortPreviewRuneLimit = 50
)

/*

Post is a piece of user authored content, either a news item or an article

Id: primary key, use to identify a post
CreatedAt: time when entity is created, immutable once set
DeletedAt: time when entity is deleted

AuthorID:
Author: the author who published this post, "belongs-to" relation
PostType: "NW" for news, "AR" for article, decides the route namespace
Title: post's title in plain text
Content: post's content in plain text
Rating: mutable integer changed by discrete like/dislike vote events

Categories: categories this post is published into, "many-to-many" relation
	through PostCategory. The join table's composite primary key guarantees a
	post cannot be linked twice to the same category.

*/
type Post struct {
	Id         string    `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"<-:create"`
	DeletedAt  gorm.DeletedAt
	AuthorID   string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Author     Author `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PostType   string `gorm:"index"`
	Title      string
	Content    string
	Rating     int
	Categories []*Category `json:"categories" gorm:"many2many:post_categories;"`
}

// Preview returns the listing/digest excerpt: the first 124 characters of
// the content, with an ellipsis appended only when truncation occurred.
// The cut is a plain character boundary, no word-boundary awareness.
func (p *Post) Preview() string {
	return truncate(p.Content, previewRuneLimit)
}

// ShortPreview is the tighter excerpt used in immediate notifications.
func (p *Post) ShortPreview() string {
	return truncate(p.Content, shortPreviewRuneLimit)
}

// AbsolutePath returns the post's path under its route namespace. News and
// articles live under different namespaces.
func (p *Post) AbsolutePath() string {
	if p.PostType == PostTypeNews {
		return "/news/" + p.Id
	}
	return "/articles/" + p.Id
}

func truncate(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
