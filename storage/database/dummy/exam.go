package dummydb

import (
	"context"
	"sort"

	"github.com/classeapp/classe/core/exam"
)

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil)

func NewExamRepository(db *DB) *examRepository {
	return &examRepository{db: db}
}

func (repo *examRepository) CreateExam(_ context.Context, ex exam.Exam) (exam.Exam, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.exams[ex.ID] = ex
	return ex, nil
}

func (repo *examRepository) QueryAllExams(_ context.Context) ([]exam.Exam, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.db.exams))
	for _, ex := range repo.db.exams {
		exams = append(exams, ex)
	}
	sort.SliceStable(exams, func(i, j int) bool { return exams[i].Date < exams[j].Date })
	return exams, nil
}

func (repo *examRepository) DeleteExam(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.exams[id]; !ok {
		return exam.ErrNotFound
	}
	delete(repo.db.exams, id)
	return nil
}
