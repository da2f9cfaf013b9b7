package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExamValidate(t *testing.T) {
	valid := NewExam{
		Subject:   "Maths",
		Date:      "2026-09-15",
		StartTime: "08:30",
		Duration:  "2h",
		Room:      " B12 ",
	}

	t.Run("valid", func(t *testing.T) {
		ne := valid
		assert.NoError(t, ne.Validate())
		assert.Equal(t, "B12", ne.Room)
	})

	t.Run("bad date format", func(t *testing.T) {
		ne := valid
		ne.Date = "tomorrow"
		assert.Error(t, ne.Validate())
	})

	t.Run("missing room", func(t *testing.T) {
		ne := valid
		ne.Room = ""
		assert.Error(t, ne.Validate())
	})
}
