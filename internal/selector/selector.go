// Package selector turns a quiz mode into the list of items a session starts with.
package selector

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/example/vocabquiz/pkg/models"
)

// DefaultQuickSize is the length of a quick random quiz
const DefaultQuickSize = 30

// Source provides the catalog items
type Source interface {
	Items() []models.VocabItem
	ByCategory(key string) []models.VocabItem
}

// Starred filters catalog items down to the bookmarked ones
type Starred interface {
	StarredItems(catalog []models.VocabItem) []models.VocabItem
}

// Kind identifies how items are chosen
type Kind int

const (
	KindAll Kind = iota
	KindQuick
	KindStarred
	KindCategory
	KindRetry
)

// Mode describes which items a quiz is about
type Mode struct {
	Kind     Kind
	Category string             // for KindCategory
	Items    []models.VocabItem // for KindRetry
}

// All selects the whole catalog
func All() Mode { return Mode{Kind: KindAll} }

// Quick selects a random sample of the catalog
func Quick() Mode { return Mode{Kind: KindQuick} }

// StarredOnly selects the bookmarked items
func StarredOnly() Mode { return Mode{Kind: KindStarred} }

// Category selects the items tagged with key, e.g. "Day 3"
func Category(key string) Mode { return Mode{Kind: KindCategory, Category: key} }

// Retry replays an explicit list, typically the missed items of a finished quiz
func Retry(items []models.VocabItem) Mode { return Mode{Kind: KindRetry, Items: items} }

// ParseMode reads the textual mode names used by the CLI and the bot:
// "all", "quick" (also "random30"), "starred", a day number or a category key.
func ParseMode(s string) Mode {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "all":
		return All()
	case "quick", "random", "random30":
		return Quick()
	case "starred", "star":
		return StarredOnly()
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return Category("Day " + strconv.Itoa(n))
	}
	return Category(s)
}

// String returns the label stored with session results
func (m Mode) String() string {
	switch m.Kind {
	case KindQuick:
		return "quick"
	case KindStarred:
		return "starred"
	case KindCategory:
		return m.Category
	case KindRetry:
		return "retry"
	default:
		return "all"
	}
}

// Options tunes the selection
type Options struct {
	// Sample size for KindQuick, DefaultQuickSize when zero
	QuickSize int
	// Random source for KindQuick, seeded from the clock when nil
	Rand *rand.Rand
}

// Select returns the items for mode. It never returns nil; an empty list
// means there is nothing to quiz on and no session should be started.
func Select(mode Mode, src Source, starred Starred, opts Options) []models.VocabItem {
	out := []models.VocabItem{}

	switch mode.Kind {
	case KindRetry:
		for _, item := range mode.Items {
			if !item.IsZero() {
				out = append(out, item)
			}
		}
		return out
	case KindStarred:
		if src == nil || starred == nil {
			return out
		}
		return append(out, starred.StarredItems(src.Items())...)
	case KindCategory:
		if src == nil || strings.TrimSpace(mode.Category) == "" {
			return out
		}
		return append(out, src.ByCategory(mode.Category)...)
	case KindQuick:
		if src == nil {
			return out
		}
		return sample(src.Items(), opts)
	case KindAll:
		if src == nil {
			return out
		}
		return append(out, src.Items()...)
	}
	return out
}

func sample(items []models.VocabItem, opts Options) []models.VocabItem {
	size := opts.QuickSize
	if size <= 0 {
		size = DefaultQuickSize
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	out := make([]models.VocabItem, len(items))
	copy(out, items)
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	if len(out) > size {
		out = out[:size]
	}
	return out
}
