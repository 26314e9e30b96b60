package template

import "sync"

// Store is an in-memory collection of templates kept in insertion order.
// It is not safe for concurrent use; Session serializes access.
type Store struct {
	items []Template
	index map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add appends t. A duplicate id is a *ConflictError.
func (s *Store) Add(t Template) error {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[t.ID]; ok {
		return &ConflictError{ID: t.ID}
	}
	s.index[t.ID] = len(s.items)
	s.items = append(s.items, t)
	return nil
}

// Remove deletes the template with id and reports whether it was present.
func (s *Store) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return true
}

// Get returns the template with id or a *NotFoundError.
func (s *Store) Get(id string) (Template, error) {
	i, ok := s.index[id]
	if !ok {
		return Template{}, &NotFoundError{ID: id}
	}
	return s.items[i], nil
}

// List returns a copy of all templates in insertion order.
func (s *Store) List() []Template {
	out := make([]Template, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of templates.
func (s *Store) Len() int { return len(s.items) }

// Session owns one store and the current selection. The selection, when set,
// always names a template present in the store.
type Session struct {
	mu       sync.RWMutex
	store    *Store
	selected string
}

// NewSession returns a session with an empty store.
func NewSession() *Session {
	return &Session{store: NewStore()}
}

// Add appends t without changing the selection.
func (s *Session) Add(t Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Add(t)
}

// AddAndSelect appends t and makes it the selection, as an upload does.
func (s *Session) AddAndSelect(t Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Add(t); err != nil {
		return err
	}
	s.selected = t.ID
	return nil
}

// Remove deletes id if present and clears the selection when it named id.
func (s *Session) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Remove(id)
	if s.selected == id {
		s.selected = ""
	}
}

// Select makes id the selection and returns it, or fails with a
// *NotFoundError leaving the selection unchanged.
func (s *Session) Select(id string) (Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.store.Get(id)
	if err != nil {
		return Template{}, err
	}
	s.selected = id
	return t, nil
}

// Selected returns the selected template, if any.
func (s *Session) Selected() (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return Template{}, false
	}
	t, err := s.store.Get(s.selected)
	if err != nil {
		return Template{}, false
	}
	return t, true
}

// List returns all templates in insertion order.
func (s *Session) List() []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.List()
}

// Get returns the template with id without changing the selection.
func (s *Session) Get(id string) (Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(id)
}
