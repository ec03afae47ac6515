// Package catalog holds the read-only reference data: categories of titles
// and the flattened, id-unique index built from them.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Kind string

const (
	KindFilm   Kind = "film"
	KindSeries Kind = "series"
)

// Category titles with special meaning.
const (
	TrendingNow      = "Trending Now"
	ContinueWatching = "Continue Watching"
	MyList           = "My List"
	TopPicks         = "Top Picks for You"
	TopTenMovies     = "Top 10 Movies in Dishuflix Today"
	TopTenSeries     = "Top 10 Series in Dishuflix Today"
)

type Item struct {
	ID       int      `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Kind     Kind     `yaml:"kind" json:"kind"`
	Poster   string   `yaml:"poster" json:"poster"`
	Backdrop string   `yaml:"backdrop" json:"backdrop,omitempty"`
	Genres   []string `yaml:"genres" json:"genres"`
	Rating   float64  `yaml:"rating" json:"rating"`
	Year     int      `yaml:"year" json:"year"`
	Synopsis string   `yaml:"synopsis" json:"synopsis"`
	Cast     []string `yaml:"cast" json:"cast"`
	Trailer  string   `yaml:"trailer" json:"trailer,omitempty"`
	New      bool     `yaml:"new" json:"new,omitempty"`
}

// SharesGenre reports whether the two items have at least one genre in common.
func (i Item) SharesGenre(other Item) bool {
	for _, g := range i.Genres {
		for _, o := range other.Genres {
			if g == o {
				return true
			}
		}
	}
	return false
}

type Category struct {
	Title string `yaml:"title" json:"title"`
	Items []Item `yaml:"items" json:"items"`
}

// Synthetic reports whether the category's membership comes from user state
// rather than the reference data.
func (c Category) Synthetic() bool {
	return IsSynthetic(c.Title)
}

func IsSynthetic(title string) bool {
	return title == ContinueWatching || title == MyList
}

// Ranked reports whether the category renders as a numbered carousel.
func (c Category) Ranked() bool {
	return strings.Contains(c.Title, "Top 10")
}

type document struct {
	Categories []Category `yaml:"categories"`
}

//go:embed catalog.yaml
var embedded []byte

// Embedded returns the reference data compiled into the binary.
func Embedded() ([]Category, error) {
	return Parse(embedded)
}

// LoadFile reads reference data from a YAML file.
func LoadFile(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and checks a YAML catalog document.
func Parse(data []byte) ([]Category, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for _, c := range doc.Categories {
		if c.Title == "" {
			return nil, fmt.Errorf("catalog: category without title")
		}
		for _, item := range c.Items {
			if err := validateItem(item); err != nil {
				return nil, fmt.Errorf("catalog: category %q: %w", c.Title, err)
			}
		}
	}

	return doc.Categories, nil
}

func validateItem(item Item) error {
	switch {
	case item.ID <= 0:
		return fmt.Errorf("item %q: id must be positive", item.Title)
	case item.Title == "":
		return fmt.Errorf("item %d: empty title", item.ID)
	case item.Kind != KindFilm && item.Kind != KindSeries:
		return fmt.Errorf("item %d: unknown kind %q", item.ID, item.Kind)
	case len(item.Genres) == 0:
		return fmt.Errorf("item %d: no genres", item.ID)
	case item.Rating < 0 || item.Rating > 10:
		return fmt.Errorf("item %d: rating %.1f outside [0,10]", item.ID, item.Rating)
	}
	return nil
}
