package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestContactDuration(t *testing.T) {
	t.Run("computed from the wall-clock interval", func(t *testing.T) {
		c := &Contact{StartTime: strPtr("09:15"), EndTime: strPtr("10:45")}
		assert.Equal(t, 90*time.Minute, c.Duration())
	})

	t.Run("zero when a time is missing", func(t *testing.T) {
		c := &Contact{StartTime: strPtr("09:15")}
		assert.Zero(t, c.Duration())
	})

	t.Run("zero when a time is malformed", func(t *testing.T) {
		c := &Contact{StartTime: strPtr("9am"), EndTime: strPtr("10:45")}
		assert.Zero(t, c.Duration())
	})
}

func TestContactStartDateTime(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("combines date and start time", func(t *testing.T) {
		c := &Contact{Date: date, StartTime: strPtr("14:30")}
		assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), c.StartDateTime())
	})

	t.Run("midnight without a start time", func(t *testing.T) {
		c := &Contact{Date: date}
		assert.Equal(t, date, c.StartDateTime())
	})
}

func TestContactAppendNotes(t *testing.T) {
	t.Run("existing notes are kept and the section appended", func(t *testing.T) {
		c := &Contact{Notes: strPtr("first entry")}
		c.AppendNotes(strPtr("second entry"))

		require.NotNil(t, c.Notes)
		assert.Equal(t, "first entry"+ContactNotesSeparator+"second entry", *c.Notes)
	})

	t.Run("nil and empty sections are skipped", func(t *testing.T) {
		c := &Contact{Notes: strPtr("first entry")}
		c.AppendNotes(nil, strPtr(""))

		assert.Equal(t, "first entry", *c.Notes)
	})

	t.Run("first section becomes the notes", func(t *testing.T) {
		c := &Contact{}
		c.AppendNotes(strPtr("heading"), strPtr("body"))

		require.NotNil(t, c.Notes)
		assert.Equal(t, "heading"+ContactNotesSeparator+"body", *c.Notes)
	})

	t.Run("no sections leaves notes nil", func(t *testing.T) {
		c := &Contact{}
		c.AppendNotes(nil)

		assert.Nil(t, c.Notes)
	})
}

func TestIsPermissibleAbsence(t *testing.T) {
	cases := []struct {
		name       string
		attendance *bool
		compliant  *bool
		want       bool
	}{
		{"acceptable absence", boolPtr(false), boolPtr(true), true},
		{"attended", boolPtr(true), boolPtr(true), false},
		{"unacceptable absence", boolPtr(false), boolPtr(false), false},
		{"flags unset", nil, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &ContactOutcomeType{Attendance: tc.attendance, CompliantAcceptable: tc.compliant}
			assert.Equal(t, tc.want, o.IsPermissibleAbsence())
		})
	}
}

func TestUserProviders(t *testing.T) {
	t.Run("comma separated codes", func(t *testing.T) {
		u := &User{ProviderCodes: "N01,N02"}
		assert.Equal(t, []string{"N01", "N02"}, u.Providers())
	})

	t.Run("empty segments are dropped", func(t *testing.T) {
		u := &User{ProviderCodes: "N01,,N02,"}
		assert.Equal(t, []string{"N01", "N02"}, u.Providers())
	})

	t.Run("no codes", func(t *testing.T) {
		u := &User{}
		assert.Empty(t, u.Providers())
	})
}
