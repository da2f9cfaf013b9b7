package announcement

import (
	"github.com/volatiletech/null/v8"

	"github.com/classeapp/classe/core"
)

// Importance levels
const (
	ImportanceNormal = "normal"
	ImportanceUrgent = "urgent"
)

// Announcement is a dated notice shown on the dashboard. JSON/db tags are
// the wire column names of the announcements table. CreatorID/CreatorName
// are denormalized at creation time and never updated afterwards.
type Announcement struct {
	ID          string      `json:"id" db:"id"`
	Title       string      `json:"titre" db:"titre"`
	Subject     string      `json:"matiere" db:"matiere"`
	MeetLink    null.String `json:"lien_meet,omitempty" db:"lien_meet"`
	Date        string      `json:"date" db:"date"` // ISO date (YYYY-MM-DD)
	Time        string      `json:"heure" db:"heure"`
	Importance  string      `json:"importance" db:"importance"`
	CreatorID   string      `json:"createur_id" db:"createur_id"`
	CreatorName string      `json:"createur_nom" db:"createur_nom"`
}

func (a *Announcement) IsUrgent() bool { return a.Importance == ImportanceUrgent }

// NewAnnouncement contains information needed to publish an Announcement.
// The creator is stamped from the acting session, not from the payload.
type NewAnnouncement struct {
	Title      string      `json:"titre" validate:"required"`
	Subject    string      `json:"matiere" validate:"required"`
	MeetLink   null.String `json:"lien_meet"`
	Date       string      `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string      `json:"heure" validate:"required"`
	Importance string      `json:"importance" validate:"required,oneof=normal urgent"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Subject = core.CleanString(na.Subject)
	return core.Validate.Struct(na)
}
