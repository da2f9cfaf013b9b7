package dummydb

import (
	"context"
	"sort"

	"github.com/classeapp/classe/core/announcement"
)

type announcementRepository struct {
	db *DB
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *DB) *announcementRepository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.announcements[ann.ID] = ann
	return ann, nil
}

func (repo *announcementRepository) QueryAllAnnouncements(_ context.Context) ([]announcement.Announcement, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	anns := make([]announcement.Announcement, 0, len(repo.db.announcements))
	for _, ann := range repo.db.announcements {
		anns = append(anns, ann)
	}
	sort.SliceStable(anns, func(i, j int) bool { return anns[i].Date > anns[j].Date })
	return anns, nil
}

func (repo *announcementRepository) DeleteAnnouncement(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.announcements[id]; !ok {
		return announcement.ErrNotFound
	}
	delete(repo.db.announcements, id)
	return nil
}
