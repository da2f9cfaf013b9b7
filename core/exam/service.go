package exam

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/classeapp/classe/core/account"
)

var ErrNotFound = errors.New("exam not found")

type (
	Repository interface {
		CreateExam(ctx context.Context, ex Exam) (Exam, error)
		// QueryAllExams returns exams ordered by date, soonest first.
		QueryAllExams(ctx context.Context) ([]Exam, error)
		DeleteExam(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewExam, responsible account.Account) (Exam, error) {
	ex := Exam{
		ID:              uuid.New().String(),
		Subject:         ne.Subject,
		Date:            ne.Date,
		StartTime:       ne.StartTime,
		Duration:        ne.Duration,
		Room:            ne.Room,
		Notes:           ne.Notes,
		ResponsibleID:   responsible.ID,
		ResponsibleName: responsible.Name,
	}
	return svc.repo.CreateExam(ctx, ex)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Exam, error) {
	return svc.repo.QueryAllExams(ctx)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteExam(ctx, id)
}
