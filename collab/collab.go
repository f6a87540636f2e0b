// Package collab tracks the connection state and presence of a real-time
// collaboration provider. The provider itself is an external transport;
// this package only normalizes what it reports.
package collab

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Status is the normalized connection state of a collaboration session.
type Status string

// Collaboration statuses.
const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// User is a collaborator present in a session.
type User struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`

	// Initials is derived from Name by the Monitor.
	Initials string `json:"initials"`
}

// Provider is a real-time collaboration transport seen as a capability:
// a status signal, a synced signal and a presence list.
type Provider interface {
	// Synced reports whether the initial document sync completed.
	Synced() bool

	// OnStatus registers fn for transport status changes.
	OnStatus(fn func(Status)) (unsubscribe func())

	// OnSynced registers fn for the synced signal.
	OnSynced(fn func()) (unsubscribe func())

	// OnAwareness registers fn for presence changes.
	OnAwareness(fn func()) (unsubscribe func())

	// Users returns the collaborators currently present.
	Users() []User
}

// Initials returns the first letter of the first and last whitespace
// separated tokens of name, uppercased. Missing letters become "?".
func Initials(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "??"
	}
	return firstLetter(tokens[0]) + firstLetter(tokens[len(tokens)-1])
}

func firstLetter(token string) string {
	r, _ := utf8.DecodeRuneInString(token)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// dedupe drops repeated client IDs, keeping the first occurrence, and
// fills in initials.
func dedupe(users []User) []User {
	seen := make(map[string]bool, len(users))
	out := make([]User, 0, len(users))
	for _, u := range users {
		if seen[u.ClientID] {
			continue
		}
		seen[u.ClientID] = true
		u.Initials = Initials(u.Name)
		out = append(out, u)
	}
	return out
}

var palette = []string{
	"#958DF1", "#F98181", "#FBBC88", "#FAF594",
	"#70CFF8", "#94FADB", "#B9F18D",
}

// Color picks a stable cursor color for clientID.
func Color(clientID string) string {
	return palette[xxhash.Sum64String(clientID)%uint64(len(palette))]
}
