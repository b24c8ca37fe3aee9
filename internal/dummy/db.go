// Package dummy holds in-memory implementations of the repositories and
// outer services, used by the service and handler tests.
package dummy

import (
	"sync"
	"time"

	"anoa.com/safereport/internal/entity"
	"github.com/google/uuid"
)

type (
	DB struct {
		users         *userTable
		reports       *reportTable
		comments      *commentTable
		announcements *announcementTable
	}

	userTable struct {
		sync.RWMutex
		table    map[uuid.UUID]*entity.User
		profiles map[uuid.UUID]*entity.Profile
	}

	reportTable struct {
		sync.RWMutex
		table map[uuid.UUID]*entity.Report
	}

	commentTable struct {
		sync.RWMutex
		table []*entity.ReportComment
	}

	announcementTable struct {
		sync.RWMutex
		table map[uuid.UUID]*entity.Announcement
		likes map[uuid.UUID]map[uuid.UUID]bool
	}
)

func Open() *DB {
	return &DB{
		users:         &userTable{table: make(map[uuid.UUID]*entity.User), profiles: make(map[uuid.UUID]*entity.Profile)},
		reports:       &reportTable{table: make(map[uuid.UUID]*entity.Report)},
		comments:      &commentTable{},
		announcements: &announcementTable{table: make(map[uuid.UUID]*entity.Announcement), likes: make(map[uuid.UUID]map[uuid.UUID]bool)},
	}
}

// clock hands out strictly increasing timestamps so "newest first" is stable
// even when rows are created in the same instant.
var (
	clockMu sync.Mutex
	last    time.Time
)

func stamp() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()

	now := time.Now().UTC()
	if !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	last = now
	return now
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
