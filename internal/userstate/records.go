package userstate

import (
	"maps"
	"slices"
	"strings"

	"dishuflix/internal/errors"
)

// DisplayName returns the stored name and whether one exists.
func (s *Store) DisplayName() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.name != ""
}

func (s *Store) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Validation("name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = name
	return s.write(KeyName, name)
}

func (s *Store) PaymentComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paid
}

func (s *Store) MarkPaymentComplete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paid = true
	return s.write(KeyPayment, paymentSuccess)
}

// ListMembership returns the saved ids in the order they were added.
func (s *Store) ListMembership() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.list)
}

func (s *Store) InList(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.list, id)
}

// Toggle flips membership of id and reports whether it is now in the list.
func (s *Store) Toggle(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added bool
	if i := slices.Index(s.list, id); i >= 0 {
		s.list = slices.Delete(s.list, i, i+1)
	} else {
		s.list = append(s.list, id)
		added = true
	}

	list := s.list
	if list == nil {
		list = []int{}
	}
	return added, s.writeJSON(KeyMyList, list)
}

// Progress returns a copy of the watch-progress map.
func (s *Store) Progress() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.progress)
}

func (s *Store) ProgressOf(id int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pct, ok := s.progress[id]
	return pct, ok
}

// SetProgress records pct for id, replacing any earlier value.
func (s *Store) SetProgress(id, pct int) error {
	if pct < 0 || pct > 100 {
		return errors.ValidationWithDetails("progress must be within [0,100]", map[string]int{"progress": pct})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress[id] = pct

	raw := make(map[int]progressEntry, len(s.progress))
	for k, v := range s.progress {
		raw[k] = progressEntry{Progress: v}
	}
	return s.writeJSON(KeyProgress, raw)
}

// RecentSearches returns the history, most recent first.
func (s *Store) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.recent)
}

// RecordSearch puts query at the front of the history. An entry matching it
// case-insensitively moves instead of duplicating, and the oldest entries fall
// off past the limit. Blank queries are ignored.
func (s *Store) RecordSearch(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := make([]string, 0, len(s.recent)+1)
	recent = append(recent, query)
	target := fold(query)
	for _, q := range s.recent {
		if fold(q) != target {
			recent = append(recent, q)
		}
	}
	if len(recent) > s.recentLimit {
		recent = recent[:s.recentLimit]
	}
	s.recent = recent

	return s.writeJSON(KeyRecent, s.recent)
}
