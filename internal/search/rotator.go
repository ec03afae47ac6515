package search

import (
	"sync"
	"time"

	"dishuflix/internal/clock"
	"dishuflix/internal/config"
)

// DefaultPhrases are the example titles the search placeholder cycles through.
var DefaultPhrases = []string{
	"Mirzapur", "Panchayat", "The Family Man", "Scam 1992", "Sacred Games",
	"Asur", "Kota Factory", "Farzi", "Paatal Lok", "Jawan", "Pathaan",
	"Animal", "Salaar", "RRR", "K.G.F: Chapter 2", "Fighter", "12th Fail",
	"3 Idiots", "Dangal", "Sholay", "Hera Pheri", "Zindagi Na Milegi Dobara",
	"Money Heist", "Friends", "Game of Thrones", "Breaking Bad",
	"Stranger Things", "The Office (US)", "Squid Game", "Peaky Blinders",
	"Dark", "The Boys", "Avengers: Endgame", "Oppenheimer", "Joker",
	"Inception", "The Dark Knight",
}

// Timing holds the typewriter delays.
type Timing struct {
	StartDelay time.Duration
	Typing     time.Duration
	Hold       time.Duration
	Deleting   time.Duration
	Pause      time.Duration
}

func timingFrom(cfg config.SearchConfig) Timing {
	return Timing{
		StartDelay: cfg.StartDelay,
		Typing:     cfg.Typing,
		Hold:       cfg.Hold,
		Deleting:   cfg.Deleting,
		Pause:      cfg.Pause,
	}
}

// Rotator types each phrase forward, holds it, deletes it and moves on to the
// next one, wrapping at the end of the list. It runs only between Start and
// Stop; every Start begins again from the first phrase.
type Rotator struct {
	phrases [][]rune
	timing  Timing

	mu       sync.Mutex
	idx      int
	count    int
	deleting bool
	task     *clock.Task
}

func NewRotator(phrases []string, timing Timing) *Rotator {
	r := &Rotator{timing: timing}
	for _, p := range phrases {
		r.phrases = append(r.phrases, []rune(p))
	}
	return r
}

// Start arms the rotation on c. A running rotation is left as is.
func (r *Rotator) Start(c clock.Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.task != nil || len(r.phrases) == 0 {
		return
	}
	r.idx, r.count, r.deleting = 0, 0, false
	r.task = clock.Schedule(c, r.timing.StartDelay, r.advance)
}

// Stop tears the rotation down. It reports whether a running rotation was
// stopped.
func (r *Rotator) Stop() bool {
	r.mu.Lock()
	task := r.task
	r.task = nil
	r.count = 0
	r.mu.Unlock()

	// not under r.mu: a firing step holds the task lock and then takes r.mu
	if task == nil {
		return false
	}
	return task.Cancel()
}

func (r *Rotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.task != nil
}

// Text returns the currently visible part of the active phrase.
func (r *Rotator) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.phrases) == 0 {
		return ""
	}
	return string(r.phrases[r.idx][:r.count])
}

func (r *Rotator) advance() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := len(r.phrases[r.idx])

	delay := r.timing.Typing
	if r.deleting {
		r.count--
		delay = r.timing.Deleting
	} else {
		r.count++
	}

	switch {
	case !r.deleting && r.count >= full:
		r.count = full
		r.deleting = true
		delay = r.timing.Hold
	case r.deleting && r.count <= 0:
		r.count = 0
		r.deleting = false
		r.idx = (r.idx + 1) % len(r.phrases)
		delay = r.timing.Pause
	}
	return delay
}
