package selector

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabquiz/internal/catalog"
	"github.com/example/vocabquiz/pkg/models"
)

type starredSet map[string]bool

func (s starredSet) StarredItems(items []models.VocabItem) []models.VocabItem {
	var out []models.VocabItem
	for _, item := range items {
		if s[item.Term] {
			out = append(out, item)
		}
	}
	return out
}

func testCatalog(t *testing.T, days, perDay int) *catalog.Catalog {
	t.Helper()
	var items []models.VocabItem
	for d := 1; d <= days; d++ {
		for i := 1; i <= perDay; i++ {
			term := fmt.Sprintf("term%d%c", d, 'a'+i-1)
			items = append(items, models.VocabItem{
				Term:       term,
				Definition: "definition of " + term,
				Category:   catalog.DayKey(d),
			})
		}
	}
	c, err := catalog.New(items)
	require.NoError(t, err)
	return c
}

func TestSelectAll(t *testing.T) {
	c := testCatalog(t, 3, 4)
	got := Select(All(), c, nil, Options{})
	assert.Equal(t, c.Items(), got)
}

func TestSelectQuick(t *testing.T) {
	c := testCatalog(t, 4, 10)

	got := Select(Quick(), c, nil, Options{Rand: rand.New(rand.NewSource(7))})
	assert.Len(t, got, DefaultQuickSize)
	assert.Subset(t, c.Items(), got)

	again := Select(Quick(), c, nil, Options{Rand: rand.New(rand.NewSource(7))})
	assert.Equal(t, got, again)

	small := Select(Quick(), c, nil, Options{QuickSize: 5})
	assert.Len(t, small, 5)

	tiny := testCatalog(t, 1, 3)
	assert.Len(t, Select(Quick(), tiny, nil, Options{}), 3)
}

func TestSelectStarred(t *testing.T) {
	c := testCatalog(t, 2, 3)
	starred := starredSet{"term1b": true, "term2c": true}

	got := Select(StarredOnly(), c, starred, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, "term1b", got[0].Term)
	assert.Equal(t, "term2c", got[1].Term)

	assert.Equal(t, []models.VocabItem{}, Select(StarredOnly(), c, starredSet{}, Options{}))
	assert.Equal(t, []models.VocabItem{}, Select(StarredOnly(), c, nil, Options{}))
}

func TestSelectCategory(t *testing.T) {
	c := testCatalog(t, 3, 2)

	got := Select(Category("Day 2"), c, nil, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, "Day 2", got[0].Category)

	assert.Equal(t, []models.VocabItem{}, Select(Category("Day 42"), c, nil, Options{}))
	assert.Equal(t, []models.VocabItem{}, Select(Category(""), c, nil, Options{}))
}

func TestSelectRetryFiltersEmptyEntries(t *testing.T) {
	retry := []models.VocabItem{{Term: "ephemeral"}, {}, {Term: "  "}, {Term: "ubiquitous"}}

	got := Select(Retry(retry), nil, nil, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, "ephemeral", got[0].Term)
	assert.Equal(t, "ubiquitous", got[1].Term)

	assert.Equal(t, []models.VocabItem{}, Select(Retry(nil), nil, nil, Options{}))
}

func TestSelectWithoutSourceNeverNil(t *testing.T) {
	for _, mode := range []Mode{All(), Quick(), StarredOnly(), Category("Day 1"), {Kind: Kind(99)}} {
		got := Select(mode, nil, nil, Options{})
		assert.NotNil(t, got, mode.String())
		assert.Empty(t, got, mode.String())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", All()},
		{"ALL", All()},
		{"quick", Quick()},
		{"random30", Quick()},
		{"starred", StarredOnly()},
		{"3", Category("Day 3")},
		{"Day 3", Category("Day 3")},
		{"verbs", Category("verbs")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMode(tt.in), tt.in)
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "all", All().String())
	assert.Equal(t, "quick", Quick().String())
	assert.Equal(t, "starred", StarredOnly().String())
	assert.Equal(t, "Day 4", Category("Day 4").String())
	assert.Equal(t, "retry", Retry(nil).String())
}
