// Package dummydb provides in-memory repositories for tests and local
// hacking, mirroring the behavior of the real store minus persistence and
// the change feed.
package dummydb

import (
	"sync"

	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/announcement"
	"github.com/classeapp/classe/core/exam"
	"github.com/classeapp/classe/core/poll"
)

type DB struct {
	mu sync.RWMutex

	accounts      map[string]account.Account
	announcements map[string]announcement.Announcement
	exams         map[string]exam.Exam
	polls         map[string]poll.Poll
}

func Open() (*DB, error) {
	return &DB{
		accounts:      make(map[string]account.Account),
		announcements: make(map[string]announcement.Announcement),
		exams:         make(map[string]exam.Exam),
		polls:         make(map[string]poll.Poll),
	}, nil
}
