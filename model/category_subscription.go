package model

import (
	"time"
)

/*

CategorySubscription is a "many-to-many" relation of user's subscription to a category

UserID: user id
CategoryID: category id
CreatedAt: time when relation is created

The composite primary key makes subscription idempotent, inserting the same
pair twice is a conflict no-op rather than a duplicate membership.

*/
type CategorySubscription struct {
	UserID     string `gorm:"primaryKey"`
	CategoryID string `gorm:"primaryKey"`
	CreatedAt  time.Time
}
