package model

import (
	"time"

	"gorm.io/gorm"
)

/*

User is a registered reader of the portal

Id: primary key, use to identify a user
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Name: user's display name
Email: user's email address, notification delivery target
SubscribedCategories: categories this user subscribed to, "many-to-many" relation

*/
type User struct {
	Id                   string `gorm:"primaryKey"`
	CreatedAt            time.Time
	DeletedAt            gorm.DeletedAt
	Name                 string
	Email                string      `gorm:"uniqueIndex"`
	SubscribedCategories []*Category `json:"subscribed_categories" gorm:"many2many:category_subscriptions;"`
}
