package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Comment is a user comment on a post

Id: primary key, use to identify a comment
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

PostID:
Post: the post commented on, "belongs-to" relation. Deleting the post
	cascades to its comments.
UserID:
User: the commenting user, "belongs-to" relation
Text: comment body in plain text
Rating: mutable integer changed by discrete like/dislike vote events

*/
type Comment struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
	PostID    string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Post      Post   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID    string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Text      string
	Rating    int
}
