package models

import "time"

type Todo struct {
	ID         string
	OwnerID    string
	Title      string
	IsComplete bool
	Color      int64
	CreatedAt  time.Time
}
