package transcript

import (
	"strings"
	"testing"
	"time"

	"LegalChat/internal/citation"
	"LegalChat/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 4, 14, 5, 0, 0, time.UTC)
}

func TestRenderer_TextUnit(t *testing.T) {
	r := &Renderer{Clock: fixedClock, Clock24h: true}
	var buf Buffer

	h := r.Render(&buf, session.RoleSystem, "Hi! Source: `Statute 12`", false)

	units := buf.Units()
	require.Len(t, units, 1)
	u := units[0]
	assert.Equal(t, h.Unit().ID, u.ID)
	assert.Equal(t, session.RoleSystem, u.Role)
	assert.False(t, u.Loading)
	assert.Equal(t, "Hi!", u.Main)
	assert.Equal(t, []citation.Citation{{Content: "Statute 12"}}, u.Citations)
	assert.Equal(t, "14:05", u.Timestamp)
	assert.Equal(t, 1, buf.Scrolls())
}

func TestRenderer_LoadingUnit(t *testing.T) {
	r := &Renderer{Clock: fixedClock}
	var buf Buffer

	h := r.Render(&buf, session.RoleSystem, "ignored", true)

	u := h.Unit()
	assert.True(t, u.Loading)
	assert.Empty(t, u.Main)
	assert.Empty(t, u.Citations)
	assert.Empty(t, u.Timestamp)

	assert.True(t, h.Remove())
	assert.Empty(t, buf.Units())
	assert.False(t, h.Remove())
}

func TestRenderer_TwelveHourClock(t *testing.T) {
	r := &Renderer{Clock: fixedClock}
	u := r.Build(session.RoleUser, "hello", false)
	assert.Equal(t, "2:05 PM", u.Timestamp)
}

func TestRenderer_Clear(t *testing.T) {
	r := &Renderer{Clock: fixedClock}
	var buf Buffer
	r.Render(&buf, session.RoleUser, "a", false)
	r.Render(&buf, session.RoleSystem, "b", false)

	r.Clear(&buf)
	assert.Empty(t, buf.Units())
}

func TestHandle_ZeroValue(t *testing.T) {
	var h Handle
	assert.False(t, h.Remove())
}

func TestBuffer_OnAppend(t *testing.T) {
	var seen []string
	buf := &Buffer{OnAppend: func(u Unit) { seen = append(seen, u.Main) }}
	r := &Renderer{Clock: fixedClock}

	r.Render(buf, session.RoleUser, "one", false)
	r.Render(buf, session.RoleUser, "two", false)

	assert.Equal(t, []string{"one", "two"}, seen)
}

func TestFormat(t *testing.T) {
	r := &Renderer{Clock: fixedClock, Clock24h: true}

	out := Format(r.Build(session.RoleSystem, "Yes. Source: `s.48` Source: `s.49`", false))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Assistant: Yes.", lines[0])
	assert.Equal(t, "  Based on: s.48", lines[1])
	assert.Equal(t, "  Based on: s.49", lines[2])
	assert.Equal(t, "  [14:05]", lines[3])

	assert.Equal(t, "You: hi\n  [14:05]", Format(r.Build(session.RoleUser, "hi", false)))
	assert.Equal(t, "Assistant: ...", Format(r.Build(session.RoleSystem, "", true)))
}
