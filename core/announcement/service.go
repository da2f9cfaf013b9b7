package announcement

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/classeapp/classe/core/account"
)

var ErrNotFound = errors.New("announcement not found")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		// QueryAllAnnouncements returns announcements ordered by date, most recent first.
		QueryAllAnnouncements(ctx context.Context) ([]Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create publishes an announcement on behalf of creator. The resulting row
// only reaches view state once its insert event is echoed back.
func (svc *Service) Create(ctx context.Context, na NewAnnouncement, creator account.Account) (Announcement, error) {
	ann := Announcement{
		ID:          uuid.New().String(),
		Title:       na.Title,
		Subject:     na.Subject,
		MeetLink:    na.MeetLink,
		Date:        na.Date,
		Time:        na.Time,
		Importance:  na.Importance,
		CreatorID:   creator.ID,
		CreatorName: creator.Name,
	}
	return svc.repo.CreateAnnouncement(ctx, ann)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAllAnnouncements(ctx)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAnnouncement(ctx, id)
}
