package exam

import (
	"github.com/volatiletech/null/v8"

	"github.com/classeapp/classe/core"
)

// Exam is a scheduled test. JSON/db tags are the wire column names of the
// exams table. ResponsibleID/ResponsibleName are denormalized at creation
// time and never updated afterwards.
type Exam struct {
	ID              string      `json:"id" db:"id"`
	Subject         string      `json:"matiere" db:"matiere"`
	Date            string      `json:"date" db:"date"` // ISO date (YYYY-MM-DD)
	StartTime       string      `json:"heure_debut" db:"heure_debut"`
	Duration        string      `json:"duree" db:"duree"` // free text ("2h", "1h30"...)
	Room            string      `json:"salle" db:"salle"`
	Notes           null.String `json:"notes,omitempty" db:"notes"`
	ResponsibleID   string      `json:"responsable_id" db:"responsable_id"`
	ResponsibleName string      `json:"responsable_nom" db:"responsable_nom"`
}

// NewExam contains information needed to schedule an Exam. The responsible
// party is stamped from the acting session, not from the payload.
type NewExam struct {
	Subject   string      `json:"matiere" validate:"required"`
	Date      string      `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string      `json:"heure_debut" validate:"required"`
	Duration  string      `json:"duree" validate:"required"`
	Room      string      `json:"salle" validate:"required"`
	Notes     null.String `json:"notes"`
}

func (ne *NewExam) Validate() error {
	ne.Subject = core.CleanString(ne.Subject)
	ne.Room = core.CleanString(ne.Room)
	return core.Validate.Struct(ne)
}
