package model

import (
	"time"
)

/*

DigestRun records one successful weekly digest fire

Id: primary key
FiredAt: wall-clock time the digest pipeline completed
EmailsSent: how many emails the run delivered

The weekly trigger consults the most recent row instead of in-memory state,
so "at most once per calendar week" survives process restarts.

*/
type DigestRun struct {
	Id         string    `gorm:"primaryKey"`
	FiredAt    time.Time `gorm:"index"`
	EmailsSent int
}
