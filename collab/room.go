package collab

import (
	"sync"
)

var _ Provider = (*Room)(nil)

// Room is an in-process Provider for clients that share one server rather
// than a CRDT transport. Joining is the only awareness it carries, and it
// is synced from the start since the store is the single source of truth.
type Room struct {
	mu        sync.Mutex
	users     []User
	nextSub   int
	awareness map[int]func()
}

// Synced always reports true.
func (r *Room) Synced() bool { return true }

// OnStatus never fires; a room is connected from the start.
func (r *Room) OnStatus(fn func(Status)) func() { return func() {} }

// OnSynced never fires; a room is synced from the start.
func (r *Room) OnSynced(fn func()) func() { return func() {} }

// OnAwareness registers fn to run whenever someone joins or leaves.
func (r *Room) OnAwareness(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.awareness == nil {
		r.awareness = make(map[int]func())
	}
	id := r.nextSub
	r.nextSub++
	r.awareness[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.awareness, id)
	}
}

// Users returns the users in the room in join order.
func (r *Room) Users() []User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, len(r.users))
	copy(out, r.users)
	return out
}

// add appends u without notifying watchers.
func (r *Room) add(u User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
}

// remove drops every entry for clientID without notifying watchers.
func (r *Room) remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.users[:0]
	for _, u := range r.users {
		if u.ClientID != clientID {
			kept = append(kept, u)
		}
	}
	r.users = kept
}

// Empty reports whether nobody is in the room.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users) == 0
}

func (r *Room) notify() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.awareness))
	for _, fn := range r.awareness {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Hub hands out one Room per document. Rooms exist only while someone is
// in them; joining and leaving happen under the hub's lock so a room is
// never dropped between lookup and join.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*Room)}
}

// Join adds u to the document's room, creating the room on first use.
func (h *Hub) Join(documentID string, u User) *Room {
	h.mu.Lock()
	r, ok := h.rooms[documentID]
	if !ok {
		r = &Room{}
		h.rooms[documentID] = r
	}
	r.add(u)
	h.mu.Unlock()

	r.notify()
	return r
}

// Lookup returns the document's room if anyone is in it.
func (h *Hub) Lookup(documentID string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[documentID]
	return r, ok
}

// Leave removes clientID from the document's room and drops the room
// once it is empty.
func (h *Hub) Leave(documentID, clientID string) {
	h.mu.Lock()
	r, ok := h.rooms[documentID]
	if !ok {
		h.mu.Unlock()
		return
	}
	r.remove(clientID)
	if r.Empty() {
		delete(h.rooms, documentID)
	}
	h.mu.Unlock()

	r.notify()
}
