package model

import (
	"time"
)

/*

Author is the publishing identity of a user

Id: primary key, use to identify an author
CreatedAt: time when entity is created
UserID:
User: the user this author identity belongs to, "one-to-one" relation

Rating: derived author rating, recomputed on demand from owned posts
(weighted x3) and comments. It is not incrementally maintained, so the
stored value can be stale until the next recomputation.

*/
type Author struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    string `gorm:"uniqueIndex;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Rating    int
}
