// Package userstate is the persisted per-user state: display name, payment
// flag, list membership, watch progress and recent searches.
//
// Every mutator writes its slot through to durable storage before returning.
// A failed write is logged and reported as a STORAGE error; the in-memory
// value keeps the change so the session carries on.
package userstate

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"dishuflix/internal/errors"
	"dishuflix/internal/metrics"
	"dishuflix/internal/storage"
)

// Durable slot keys.
const (
	KeyName     = "dishuflix_username"
	KeyPayment  = "dishuflix_paymentStatus"
	KeyMyList   = "dishuflix_myList"
	KeyProgress = "dishuflix_continueWatching"
	KeyRecent   = "dishuflix_recentSearches"
)

const paymentSuccess = "success"

type progressEntry struct {
	Progress int `json:"progress"`
}

type Store struct {
	storage     storage.Storage
	logger      zerolog.Logger
	recentLimit int

	mu       sync.Mutex
	name     string
	paid     bool
	list     []int
	progress map[int]int
	recent   []string
}

// Load reads every slot from s. Each slot falls back to its empty default on
// its own when missing, unreadable or corrupt.
func Load(s storage.Storage, recentLimit int, logger zerolog.Logger) *Store {
	st := &Store{
		storage:     s,
		logger:      logger.With().Str("component", "userstate").Logger(),
		recentLimit: recentLimit,
		progress:    make(map[int]int),
	}

	if v, ok := st.read(KeyName); ok {
		st.name = strings.TrimSpace(v)
	}
	if v, ok := st.read(KeyPayment); ok {
		st.paid = v == paymentSuccess
	}
	if v, ok := st.read(KeyMyList); ok {
		st.list = st.parseList(v)
	}
	if v, ok := st.read(KeyProgress); ok {
		st.progress = st.parseProgress(v)
	}
	if v, ok := st.read(KeyRecent); ok {
		st.recent = st.parseRecent(v)
	}

	st.logger.Debug().
		Bool("has_name", st.name != "").
		Bool("paid", st.paid).
		Int("list", len(st.list)).
		Int("progress", len(st.progress)).
		Int("recent", len(st.recent)).
		Msg("user state loaded")

	return st
}

func (s *Store) read(key string) (string, bool) {
	v, ok, err := s.storage.Get(key)
	if err != nil {
		metrics.StorageErrors.WithLabelValues(key, "read").Inc()
		s.logger.Warn().Err(err).Str("slot", key).Msg("failed to read slot, using default")
		return "", false
	}
	return v, ok
}

func (s *Store) corrupt(key string, err error) {
	metrics.StorageErrors.WithLabelValues(key, "parse").Inc()
	s.logger.Warn().Err(err).Str("slot", key).Msg("corrupt slot, using default")
}

func (s *Store) parseList(v string) []int {
	var ids []int
	if err := json.Unmarshal([]byte(v), &ids); err != nil {
		s.corrupt(KeyMyList, err)
		return nil
	}

	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) parseProgress(v string) map[int]int {
	var raw map[int]progressEntry
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		s.corrupt(KeyProgress, err)
		return make(map[int]int)
	}

	out := make(map[int]int, len(raw))
	for id, e := range raw {
		if e.Progress < 0 || e.Progress > 100 {
			s.logger.Warn().Int("id", id).Int("progress", e.Progress).Msg("dropping out-of-range progress")
			continue
		}
		out[id] = e.Progress
	}
	return out
}

func (s *Store) parseRecent(v string) []string {
	var queries []string
	if err := json.Unmarshal([]byte(v), &queries); err != nil {
		s.corrupt(KeyRecent, err)
		return nil
	}

	var out []string
	for _, q := range queries {
		if len(out) == s.recentLimit {
			break
		}
		if strings.TrimSpace(q) != "" && indexFold(out, q) < 0 {
			out = append(out, q)
		}
	}
	return out
}

// write persists one slot. Callers hold s.mu.
func (s *Store) write(key, value string) error {
	if err := s.storage.Set(key, value); err != nil {
		metrics.StorageErrors.WithLabelValues(key, "write").Inc()
		s.logger.Error().Err(err).Str("slot", key).Msg("failed to persist slot")
		return errors.Storage(err, key)
	}
	return nil
}

func (s *Store) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "encode slot %s", key)
	}
	return s.write(key, string(data))
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func indexFold(list []string, q string) int {
	target := fold(q)
	for i, v := range list {
		if fold(v) == target {
			return i
		}
	}
	return -1
}
