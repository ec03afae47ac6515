// Package session composes the catalog, the persisted user state, the
// onboarding gate and the search engine into the views the presentation
// renders, and applies the intents it sends back.
package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"dishuflix/internal/catalog"
	"dishuflix/internal/clock"
	"dishuflix/internal/config"
	"dishuflix/internal/errors"
	"dishuflix/internal/metrics"
	"dishuflix/internal/onboarding"
	"dishuflix/internal/payment"
	"dishuflix/internal/search"
	"dishuflix/internal/userstate"
)

// Random supplies the non-deterministic choices: featured item and
// pseudo-progress on play.
type Random interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Deps is everything the orchestrator is built from. State is loaded once at
// startup and shared with Gate.
type Deps struct {
	Config  config.SessionConfig
	Payment config.PaymentConfig
	Index   *catalog.Index
	State   *userstate.Store
	Gate    *onboarding.Gate
	Search  *search.Engine
	Pay     payment.Provider
	Clock   clock.Clock
	Rand    Random // nil uses math/rand/v2
	Logger  zerolog.Logger
}

type Orchestrator struct {
	cfg      config.SessionConfig
	payCfg   config.PaymentConfig
	index    *catalog.Index
	state    *userstate.Store
	gate     *onboarding.Gate
	search   *search.Engine
	provider payment.Provider
	rand     Random
	logger   zerolog.Logger

	mu          sync.Mutex
	splashDone  bool
	splashTimer clock.Timer
	featured    *catalog.Item
	playbackKey string
	episode     int
	detailsID   int
}

func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		cfg:      d.Config,
		payCfg:   d.Payment,
		index:    d.Index,
		state:    d.State,
		gate:     d.Gate,
		search:   d.Search,
		provider: d.Pay,
		rand:     d.Rand,
		logger:   d.Logger.With().Str("component", "session").Logger(),
	}
	if o.rand == nil {
		o.rand = globalRand{}
	}

	o.featured = o.pickFeatured()

	o.mu.Lock()
	o.splashTimer = d.Clock.AfterFunc(d.Config.Splash, o.endSplash)
	o.mu.Unlock()

	o.logger.Info().
		Int("titles", o.index.Len()).
		Str("onboarding", string(o.gate.State())).
		Msg("session started")
	return o
}

func (o *Orchestrator) endSplash() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.splashDone = true
	o.splashTimer = nil
}

// pickFeatured draws the hero item from "Trending Now", falling back to the
// first unique item.
func (o *Orchestrator) pickFeatured() *catalog.Item {
	if trending, ok := o.index.Category(catalog.TrendingNow); ok && len(trending.Items) > 0 {
		item := trending.Items[o.rand.IntN(len(trending.Items))]
		return &item
	}
	if items := o.index.Items(); len(items) > 0 {
		return &items[0]
	}
	return nil
}

// Close cancels every timer the session owns.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.splashTimer != nil {
		o.splashTimer.Stop()
		o.splashTimer = nil
	}
	o.mu.Unlock()

	o.search.Close()
	o.gate.Close()
}

// View resolves the active screen: splash, then onboarding until unlocked,
// then the player while a playback key is set, otherwise browse.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view()
}

func (o *Orchestrator) view() View {
	switch {
	case !o.splashDone:
		return ViewSplash
	case !o.gate.Unlocked():
		return ViewOnboarding
	case o.playbackKey != "":
		return ViewPlayer
	default:
		return ViewBrowse
	}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{View: o.view(), Overlays: []Overlay{}, Name: o.displayName()}
	switch snap.View {
	case ViewOnboarding:
		snap.Onboarding = o.onboardingView()
	case ViewBrowse, ViewPlayer:
		if o.search.IsOpen() {
			snap.Overlays = append(snap.Overlays, OverlaySearch)
		}
		if o.detailsID != 0 {
			snap.Overlays = append(snap.Overlays, OverlayDetails)
		}
	}
	return snap
}

func (o *Orchestrator) onboardingView() *OnboardingView {
	v := &OnboardingView{
		State:        o.gate.State(),
		PaymentPhase: o.gate.PaymentPhase(),
		Invite:       o.gate.Invite(),
	}
	if sig, ok := o.gate.Signal(); ok {
		v.Signal = &sig
	}
	if v.State == onboarding.PaymentPending {
		v.Greeting = o.paymentGreeting()
		v.Order = &payment.Order{
			Amount:      o.payCfg.Amount,
			Currency:    o.payCfg.Currency,
			Description: o.payCfg.Description,
		}
	}
	return v
}

func (o *Orchestrator) displayName() string {
	if name := o.gate.DisplayName(); name != "" {
		return capitalize(name)
	}
	return ""
}

func (o *Orchestrator) paymentGreeting() string {
	return fmt.Sprintf("You're Almost In, %s!", o.displayName())
}

func (o *Orchestrator) searchGreeting() string {
	name := o.displayName()
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hey, %s! Ready for something new?", name)
}

// PersonalizeTitle substitutes name into the known category title templates.
func PersonalizeTitle(title, name string) string {
	tmpl, ok := titleTemplates[title]
	if !ok || name == "" {
		return title
	}
	return fmt.Sprintf(tmpl, capitalize(name))
}

// requireUnlocked guards the catalog intents. Callers hold o.mu.
func (o *Orchestrator) requireUnlocked() error {
	if !o.gate.Unlocked() {
		return errors.Conflictf("onboarding is %s", o.gate.State())
	}
	return nil
}

// Browse derives the hero item and the rendered categories.
func (o *Orchestrator) Browse() (BrowseView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireUnlocked(); err != nil {
		return BrowseView{}, err
	}

	progress := o.state.Progress()
	list := o.state.ListMembership()
	inList := make(map[int]bool, len(list))
	for _, id := range list {
		inList[id] = true
	}
	card := func(item catalog.Item) Card {
		c := Card{Item: item, InList: inList[item.ID]}
		if pct, ok := progress[item.ID]; ok {
			c.Progress = &pct
		}
		return c
	}

	name := o.displayName()
	view := BrowseView{Categories: []CategoryView{}}
	if o.featured != nil {
		c := card(*o.featured)
		view.Featured = &c
	}

	for _, c := range o.index.Categories() {
		items := c.Items
		switch c.Title {
		case catalog.ContinueWatching:
			items = ContinueWatching(o.index, progress)
		case catalog.MyList:
			items = o.index.Filter(func(item catalog.Item) bool { return inList[item.ID] })
		}
		if len(items) == 0 {
			continue
		}

		cv := CategoryView{
			Title:  PersonalizeTitle(c.Title, name),
			Ranked: c.Ranked(),
			Cards:  make([]Card, 0, len(items)),
		}
		for _, item := range items {
			cv.Cards = append(cv.Cards, card(item))
		}
		view.Categories = append(view.Categories, cv)
	}
	return view, nil
}

// ContinueWatching returns the items with recorded progress, highest first.
// Equal progress keeps catalog order.
func ContinueWatching(index *catalog.Index, progress map[int]int) []catalog.Item {
	items := index.Filter(func(item catalog.Item) bool {
		_, ok := progress[item.ID]
		return ok
	})
	sort.SliceStable(items, func(i, j int) bool {
		return progress[items[i].ID] > progress[items[j].ID]
	})
	return items
}

// Pay runs a checkout through the configured provider and reports its
// outcome to the gate. A provider error counts as a failed attempt.
func (o *Orchestrator) Pay(ctx context.Context) (onboarding.Outcome, error) {
	if err := o.gate.BeginPayment(); err != nil {
		return "", err
	}

	order, err := payment.NewOrder(o.payCfg)
	if err != nil {
		_ = o.gate.ReportPaymentResult(onboarding.OutcomeFailure)
		return "", errors.Wrap(err, errors.CodeInternal, "create order")
	}

	outcome, err := o.provider.Checkout(ctx, order)
	payment.Record(o.provider, outcome, err)
	if err != nil {
		o.logger.Warn().Err(err).Str("order", order.Reference).Msg("payment provider failed")
		_ = o.gate.ReportPaymentResult(onboarding.OutcomeFailure)
		if errors.Is(err, errors.ErrExternalService) {
			return onboarding.OutcomeFailure, err
		}
		return onboarding.OutcomeFailure, errors.Wrap(err, errors.CodeExternalService, "payment provider unavailable")
	}

	o.logger.Info().Str("order", order.Reference).Str("outcome", string(outcome)).Msg("payment finished")
	return outcome, o.gate.ReportPaymentResult(outcome)
}

// ReportPaymentResult forwards an outcome delivered by an external payment
// surface.
func (o *Orchestrator) ReportPaymentResult(outcome onboarding.Outcome) error {
	metrics.PaymentOutcomes.WithLabelValues("external", string(outcome)).Inc()
	return o.gate.ReportPaymentResult(outcome)
}

func (o *Orchestrator) Gate() *onboarding.Gate {
	return o.gate
}

func (o *Orchestrator) playerURL(key string) string {
	return o.cfg.PlayerBaseURL + url.QueryEscape(key)
}
