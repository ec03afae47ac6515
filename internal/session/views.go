package session

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dishuflix/internal/catalog"
	"dishuflix/internal/onboarding"
	"dishuflix/internal/payment"
	"dishuflix/internal/search"
)

// View is the active top-level screen.
type View string

const (
	ViewSplash     View = "splash"
	ViewOnboarding View = "onboarding"
	ViewPlayer     View = "player"
	ViewBrowse     View = "browse"
)

// Overlay layers on top of browse or player.
type Overlay string

const (
	OverlaySearch  Overlay = "search"
	OverlayDetails Overlay = "details"
)

type Snapshot struct {
	View       View            `json:"view"`
	Overlays   []Overlay       `json:"overlays"`
	Onboarding *OnboardingView `json:"onboarding,omitempty"`
	Name       string          `json:"name,omitempty"`
}

type OnboardingView struct {
	State        onboarding.State        `json:"state"`
	PaymentPhase onboarding.PaymentPhase `json:"payment_phase"`
	Invite       []string                `json:"invite"`
	Signal       *onboarding.Signal      `json:"signal,omitempty"`
	Greeting     string                  `json:"greeting,omitempty"`
	Order        *payment.Order          `json:"order,omitempty"`
}

// Card is a catalog item as rendered inside a carousel.
type Card struct {
	catalog.Item
	Progress *int `json:"progress,omitempty"`
	InList   bool `json:"in_list"`
}

type CategoryView struct {
	Title  string `json:"title"`
	Ranked bool   `json:"ranked"`
	Cards  []Card `json:"cards"`
}

type BrowseView struct {
	Featured   *Card          `json:"featured,omitempty"`
	Categories []CategoryView `json:"categories"`
}

type DetailsView struct {
	Card
	Similar []catalog.Item `json:"similar"`
}

type PlayerView struct {
	Key       string        `json:"key"`
	URL       string        `json:"url"`
	Episode   int           `json:"episode"`
	Episodes  []int         `json:"episodes"`
	Qualities []string      `json:"qualities"`
	Item      *catalog.Item `json:"item,omitempty"`
}

type SearchView struct {
	search.State
	Greeting string   `json:"greeting"`
	Recent   []string `json:"recent"`
}

// EpisodeCount is the number of selectable episodes on the player.
const EpisodeCount = 8

// Qualities are the stream labels offered by the player.
var Qualities = []string{"1080p HEVC", "1080p HDRip", "720p HDRip", "480p"}

// SimilarLimit caps the "more like this" row in the details view.
const SimilarLimit = 12

var titleTemplates = map[string]string{
	catalog.ContinueWatching: "Continue Watching for %s",
	catalog.TopPicks:         "Top Picks for %s",
	catalog.TopTenMovies:     "Top 10 Movies for %s Today",
	catalog.TopTenSeries:     "Top 10 Series for %s Today",
}

// capitalize upper-cases the first letter of name and leaves the rest alone.
func capitalize(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(name)
}
