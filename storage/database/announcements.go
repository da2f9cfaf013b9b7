package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core/announcement"
)

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *sqlx.DB) *announcementRepository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	err := withRetry(ctx, func(ctx context.Context) error {
		_, err := repo.db.NamedExecContext(ctx, `
			INSERT INTO announcements (id, titre, matiere, lien_meet, date, heure, importance, createur_id, createur_nom)
			VALUES (:id, :titre, :matiere, :lien_meet, :date, :heure, :importance, :createur_id, :createur_nom)`, ann)
		return err
	})
	if err != nil {
		return announcement.Announcement{}, err
	}
	return ann, nil
}

func (repo *announcementRepository) QueryAllAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	anns := []announcement.Announcement{}
	if err := repo.db.SelectContext(ctx, &anns, `SELECT * FROM announcements ORDER BY date DESC`); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	return anns, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		res, err := repo.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return permanent(announcement.ErrNotFound)
		}
		return nil
	})
}
