package session

import (
	"dishuflix/internal/catalog"
	"dishuflix/internal/errors"
	"dishuflix/internal/metrics"
)

// persisted drops STORAGE errors: the store already logged them and kept the
// change in memory.
func persisted(err error) error {
	if errors.Is(err, errors.ErrStorage) {
		return nil
	}
	return err
}

func (o *Orchestrator) lookup(id int) (catalog.Item, error) {
	item, ok := o.index.Lookup(id)
	if !ok {
		return catalog.Item{}, errors.NotFoundf("title %d not found", id)
	}
	return item, nil
}

// OpenDetails opens the details overlay for id.
func (o *Orchestrator) OpenDetails(id int) (DetailsView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireUnlocked(); err != nil {
		return DetailsView{}, err
	}
	item, err := o.lookup(id)
	if err != nil {
		return DetailsView{}, err
	}
	metrics.Intents.WithLabelValues("details").Inc()

	o.detailsID = id
	v := DetailsView{
		Card:    Card{Item: item, InList: o.state.InList(id)},
		Similar: o.index.Similar(id, SimilarLimit),
	}
	if pct, ok := o.state.ProgressOf(id); ok {
		v.Progress = &pct
	}
	return v, nil
}

func (o *Orchestrator) CloseDetails() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.detailsID = 0
}

// Play records a pseudo-progress value for id, makes its title the playback
// key and closes the details overlay.
func (o *Orchestrator) Play(id int) (PlayerView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireUnlocked(); err != nil {
		return PlayerView{}, err
	}
	item, err := o.lookup(id)
	if err != nil {
		return PlayerView{}, err
	}
	metrics.Intents.WithLabelValues("play").Inc()

	pct := o.cfg.ProgressMin + o.rand.IntN(o.cfg.ProgressMax-o.cfg.ProgressMin+1)
	if err := persisted(o.state.SetProgress(id, pct)); err != nil {
		return PlayerView{}, err
	}
	o.logger.Debug().Int("id", id).Int("progress", pct).Msg("play")
	return o.startPlayback(item.Title)
}

// Submit plays the trimmed search query as typed.
func (o *Orchestrator) Submit(query string) (PlayerView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireUnlocked(); err != nil {
		return PlayerView{}, err
	}
	key, err := o.search.Submit(query)
	if err != nil {
		return PlayerView{}, err
	}
	metrics.Intents.WithLabelValues("search").Inc()
	return o.startPlayback(key)
}

// SelectSuggestion plays the exact title of a suggested item.
func (o *Orchestrator) SelectSuggestion(id int) (PlayerView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireUnlocked(); err != nil {
		return PlayerView{}, err
	}
	key, err := o.search.SelectSuggestion(id)
	if err != nil {
		return PlayerView{}, err
	}
	metrics.Intents.WithLabelValues("suggestion").Inc()
	return o.startPlayback(key)
}

// startPlayback sets key, remembers it as a recent search and closes the
// overlays. Callers hold o.mu.
func (o *Orchestrator) startPlayback(key string) (PlayerView, error) {
	if err := persisted(o.state.RecordSearch(key)); err != nil {
		return PlayerView{}, err
	}
	o.playbackKey = key
	o.episode = 1
	o.detailsID = 0
	o.search.Close()
	return o.playerView(), nil
}

// ToggleList flips list membership for id and returns the new membership.
func (o *Orchestrator) ToggleList(id int) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireUnlocked(); err != nil {
		return false, err
	}
	if _, err := o.lookup(id); err != nil {
		return false, err
	}
	metrics.Intents.WithLabelValues("toggle_list").Inc()

	in, err := o.state.Toggle(id)
	return in, persisted(err)
}

func (o *Orchestrator) Player() (PlayerView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requirePlayer(); err != nil {
		return PlayerView{}, err
	}
	return o.playerView(), nil
}

// SelectEpisode switches the player to episode n.
func (o *Orchestrator) SelectEpisode(n int) (PlayerView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requirePlayer(); err != nil {
		return PlayerView{}, err
	}
	if n < 1 || n > EpisodeCount {
		return PlayerView{}, errors.Validationf("episode must be between 1 and %d", EpisodeCount)
	}
	o.episode = n
	return o.playerView(), nil
}

// ClosePlayer clears the playback key and returns to browse.
func (o *Orchestrator) ClosePlayer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playbackKey = ""
	o.episode = 0
}

func (o *Orchestrator) requirePlayer() error {
	if err := o.requireUnlocked(); err != nil {
		return err
	}
	if o.playbackKey == "" {
		return errors.Conflictf("nothing is playing")
	}
	return nil
}

func (o *Orchestrator) playerView() PlayerView {
	v := PlayerView{
		Key:       o.playbackKey,
		URL:       o.playerURL(o.playbackKey),
		Episode:   o.episode,
		Episodes:  make([]int, EpisodeCount),
		Qualities: append([]string(nil), Qualities...),
	}
	for i := range v.Episodes {
		v.Episodes[i] = i + 1
	}
	if items := o.index.Filter(func(it catalog.Item) bool { return it.Title == o.playbackKey }); len(items) > 0 {
		v.Item = &items[0]
	}
	return v
}

func (o *Orchestrator) OpenSearch() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireUnlocked(); err != nil {
		return err
	}
	o.search.Open()
	return nil
}

func (o *Orchestrator) CloseSearch() {
	o.search.Close()
}

// SetQuery feeds the search overlay's input.
func (o *Orchestrator) SetQuery(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireSearch(); err != nil {
		return err
	}
	o.search.SetQuery(text)
	return nil
}

func (o *Orchestrator) Search() (SearchView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireSearch(); err != nil {
		return SearchView{}, err
	}
	return SearchView{
		State:    o.search.State(),
		Greeting: o.searchGreeting(),
		Recent:   o.state.RecentSearches(),
	}, nil
}

func (o *Orchestrator) requireSearch() error {
	if err := o.requireUnlocked(); err != nil {
		return err
	}
	if !o.search.IsOpen() {
		return errors.Conflictf("search is not open")
	}
	return nil
}
