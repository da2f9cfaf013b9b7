package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name         string
		votes, total int
		want         int
	}{
		{"zero total", 0, 0, 0},
		{"negative total", 1, -1, 0},
		{"exact half", 1, 2, 50},
		{"rounds up", 2, 3, 67},
		{"rounds down", 1, 3, 33},
		{"all votes", 4, 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.votes, tt.total))
		})
	}
}

func TestPollHasVoted(t *testing.T) {
	p := Poll{VotedUserIDs: IDList{"u1", "u2"}}
	assert.True(t, p.HasVoted("u1"))
	assert.False(t, p.HasVoted("u3"))
}

func TestPollTotalVotes(t *testing.T) {
	p := Poll{Options: OptionList{{Votes: 3}, {Votes: 0}, {Votes: 2}}}
	assert.Equal(t, 5, p.TotalVotes())
}

func TestPollIsExpired(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	p := Poll{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, p.IsExpired(now))
	assert.True(t, p.IsExpired(now.Add(2*time.Hour)))
}

func TestNewPollValidate(t *testing.T) {
	np := NewPoll{
		Title:     "  Voyage de fin d'année ?  ",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Options:   []NewOption{{Text: "Oui"}, {Text: "Non"}},
	}
	assert.NoError(t, np.Validate())
	assert.Equal(t, "Voyage de fin d'année ?", np.Title)

	np.Options = []NewOption{{Text: "Oui"}}
	assert.Error(t, np.Validate(), "a poll needs at least two options")
}
