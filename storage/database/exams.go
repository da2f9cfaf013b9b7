package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core/exam"
)

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil)

func NewExamRepository(db *sqlx.DB) *examRepository {
	return &examRepository{db: db}
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	err := withRetry(ctx, func(ctx context.Context) error {
		_, err := repo.db.NamedExecContext(ctx, `
			INSERT INTO exams (id, matiere, date, heure_debut, duree, salle, notes, responsable_id, responsable_nom)
			VALUES (:id, :matiere, :date, :heure_debut, :duree, :salle, :notes, :responsable_id, :responsable_nom)`, ex)
		return err
	})
	if err != nil {
		return exam.Exam{}, err
	}
	return ex, nil
}

func (repo *examRepository) QueryAllExams(ctx context.Context) ([]exam.Exam, error) {
	exams := []exam.Exam{}
	if err := repo.db.SelectContext(ctx, &exams, `SELECT * FROM exams ORDER BY date ASC`); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	return exams, nil
}

func (repo *examRepository) DeleteExam(ctx context.Context, id string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		res, err := repo.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return permanent(exam.ErrNotFound)
		}
		return nil
	})
}
