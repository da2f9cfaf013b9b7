package poll

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/classeapp/classe/core"
)

// Option is one votable choice of a Poll. Stored inline in the poll row
// (jsonb), so its tags are wire names too.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// OptionList is stored as a jsonb column.
type OptionList []Option

func (l OptionList) Value() (driver.Value, error) {
	if l == nil {
		l = OptionList{}
	}
	return json.Marshal(l)
}

func (l *OptionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return errors.Errorf("poll: cannot scan %T into OptionList", src)
}

// IDList is stored as a jsonb column.
type IDList []string

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	return json.Marshal(l)
}

func (l *IDList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return errors.Errorf("poll: cannot scan %T into IDList", src)
}

// Poll is a vote with a fixed option list and an expiration. JSON/db tags
// are the wire column names of the polls table. VotedUserIDs tracks who
// voted; an account appears there at most once and votes are never
// retracted, so the total across options is non-decreasing.
type Poll struct {
	ID           string     `json:"id" db:"id"`
	Title        string     `json:"titre" db:"titre"`
	Anonymous    bool       `json:"anon" db:"anon"`
	CreatedAt    time.Time  `json:"date_creation" db:"date_creation"`
	ExpiresAt    time.Time  `json:"date_expiration" db:"date_expiration"`
	Options      OptionList `json:"options" db:"options"`
	VotedUserIDs IDList     `json:"voted_user_ids" db:"voted_user_ids"`
}

func (p *Poll) HasVoted(accountID string) bool {
	for _, id := range p.VotedUserIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

func (p *Poll) IsExpired(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}

func (p *Poll) TotalVotes() int {
	var total int
	for _, opt := range p.Options {
		total += opt.Votes
	}
	return total
}

// Percent is the display percentage for votes out of total. Options are
// rounded independently; the column may not sum to 100.
func Percent(votes, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(votes) / float64(total) * 100))
}

// NewPoll contains information needed to create a Poll. Option vote counts
// and the voter set always start at zero regardless of the payload.
type NewPoll struct {
	Title     string      `json:"titre" validate:"required"`
	Anonymous bool        `json:"anon"`
	ExpiresAt time.Time   `json:"date_expiration" validate:"required"`
	Options   []NewOption `json:"options" validate:"required,min=2,dive"`
}

type NewOption struct {
	Text string `json:"text" validate:"required"`
}

func (np *NewPoll) Validate() error {
	np.Title = core.CleanString(np.Title)
	for i := range np.Options {
		np.Options[i].Text = core.CleanString(np.Options[i].Text)
	}
	return core.Validate.Struct(np)
}
