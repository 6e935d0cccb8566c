package model

import (
	"time"
)

/*

PostCategory is a "many-to-many" relation of post's attachment to a category

PostID: post id
CategoryID: category id
CreatedAt: time when relation is created

Also serves as the unique-pair constraint via the composite primary key.

*/
type PostCategory struct {
	PostID     string `gorm:"primaryKey"`
	CategoryID string `gorm:"primaryKey"`
	CreatedAt  time.Time
}
