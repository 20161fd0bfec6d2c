package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// UnmarshalJSON accepts "assistant" as an alias for the system role.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Role(s) {
	case RoleUser:
		*r = RoleUser
	case RoleSystem, "assistant":
		*r = RoleSystem
	default:
		return fmt.Errorf("unknown role: %q", s)
	}
	return nil
}

// Message represents a single chat message as exchanged with the service
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// History is the ordered log of messages sent as context with each request.
// The zero value is ready to use.
type History struct {
	mu       sync.Mutex
	messages []Message
}

// Append adds a message to the end of the history
func (h *History) Append(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}

// RemoveLast drops the most recently appended message.
func (h *History) RemoveLast() (Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	last := h.messages[len(h.messages)-1]
	h.messages = h.messages[:len(h.messages)-1]
	return last, true
}

// Snapshot returns a copy of the history. With excludeLast the most recent
// entry is left out, which is the context that accompanies the current turn.
func (h *History) Snapshot(excludeLast bool) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.messages)
	if excludeLast && n > 0 {
		n--
	}
	out := make([]Message, n)
	copy(out, h.messages[:n])
	return out
}

// Reset empties the history
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// Len returns the number of stored messages
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Session represents a chat session
type Session struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	History   *History  `json:"-"`
}

// New creates an empty session with a fresh ID
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		History:   &History{},
	}
}
