// Package transcript turns messages into displayable units and attaches
// them to a host-supplied container.
package transcript

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"LegalChat/internal/citation"
	"LegalChat/internal/session"

	"github.com/google/uuid"
)

// CitationLabel prefixes every rendered citation block
const CitationLabel = "Based on:"

// Unit is one rendered transcript entry
type Unit struct {
	ID        string
	Role      session.Role
	Loading   bool
	Main      string
	Citations []citation.Citation
	Timestamp string
}

// Container is the visible message area owned by the host frontend
type Container interface {
	Append(u Unit)
	Remove(id string) bool
	Clear()
	ScrollToBottom()
}

// Handle refers to a unit that was attached to a container
type Handle struct {
	unit      Unit
	container Container
}

// Unit returns the rendered unit
func (h Handle) Unit() Unit {
	return h.unit
}

// Remove detaches the unit from its container
func (h Handle) Remove() bool {
	if h.container == nil {
		return false
	}
	return h.container.Remove(h.unit.ID)
}

// Renderer builds units. It holds no conversation state.
type Renderer struct {
	// Clock returns the current time; defaults to time.Now
	Clock    func() time.Time
	Clock24h bool
}

// Build renders a unit without attaching it anywhere
func (r *Renderer) Build(role session.Role, text string, loading bool) Unit {
	u := Unit{
		ID:      uuid.NewString(),
		Role:    role,
		Loading: loading,
	}
	if loading {
		return u
	}

	reply := citation.Extract(text)
	u.Main = reply.Main
	u.Citations = reply.Citations
	u.Timestamp = r.stamp()
	return u
}

// Render builds a unit, appends it to c and scrolls c to the bottom.
func (r *Renderer) Render(c Container, role session.Role, text string, loading bool) Handle {
	u := r.Build(role, text, loading)
	c.Append(u)
	c.ScrollToBottom()
	return Handle{unit: u, container: c}
}

// Clear empties the container
func (r *Renderer) Clear(c Container) {
	c.Clear()
}

func (r *Renderer) stamp() string {
	now := time.Now
	if r.Clock != nil {
		now = r.Clock
	}
	if r.Clock24h {
		return now().Format("15:04")
	}
	return now().Format("3:04 PM")
}

// Format renders a unit as plain text
func Format(u Unit) string {
	var b strings.Builder
	name := "Assistant"
	if u.Role == session.RoleUser {
		name = "You"
	}

	if u.Loading {
		fmt.Fprintf(&b, "%s: ...", name)
		return b.String()
	}

	fmt.Fprintf(&b, "%s: %s", name, u.Main)
	for _, c := range u.Citations {
		fmt.Fprintf(&b, "\n  %s %s", CitationLabel, c.Content)
	}
	if u.Timestamp != "" {
		fmt.Fprintf(&b, "\n  [%s]", u.Timestamp)
	}
	return b.String()
}

// Buffer is an in-memory Container
type Buffer struct {
	mu       sync.Mutex
	units    []Unit
	scrolled int

	// OnAppend, when set, is called with every appended unit
	OnAppend func(Unit)
}

// Append adds a unit at the end
func (b *Buffer) Append(u Unit) {
	b.mu.Lock()
	b.units = append(b.units, u)
	hook := b.OnAppend
	b.mu.Unlock()

	if hook != nil {
		hook(u)
	}
}

// Remove deletes the unit with the given ID
func (b *Buffer) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.units {
		if u.ID == id {
			b.units = append(b.units[:i], b.units[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all units
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.units = nil
}

// ScrollToBottom records the scroll request
func (b *Buffer) ScrollToBottom() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scrolled++
}

// Units returns a copy of the current units
func (b *Buffer) Units() []Unit {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Unit, len(b.units))
	copy(out, b.units)
	return out
}

// Scrolls reports how many times the buffer was scrolled to the bottom
func (b *Buffer) Scrolls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scrolled
}
