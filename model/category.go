package model

import (
	"time"
)

/*

Category is a topic bucket that posts are published into

Id: primary key, use to identify a category
CreatedAt: time when entity is created
Name: unique display name

Subscribers: users registered to receive notifications for this category,
	"many-to-many" relation through CategorySubscription
Posts: posts attached to this category, "many-to-many" relation through
	PostCategory

*/
type Category struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	Name        string  `gorm:"uniqueIndex"`
	Subscribers []*User `json:"subscribers" gorm:"many2many:category_subscriptions;"`
	Posts       []*Post `json:"posts" gorm:"many2many:post_categories;"`
}
