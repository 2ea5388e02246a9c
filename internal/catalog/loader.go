package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/example/vocabquiz/pkg/models"
)

// SchemaVersion is the data file version this loader understands
const SchemaVersion = 1

var (
	// ErrUnknownFormat is returned for files that are neither JSON nor YAML
	ErrUnknownFormat = errors.New("unknown catalog format")
	// ErrUnsupportedVersion is returned for data files of another schema version
	ErrUnsupportedVersion = errors.New("unsupported catalog version")
)

// Format is the encoding of a catalog data file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%s", path)
}

// DataFile is the on-disk layout: vocabulary grouped into numbered days
type DataFile struct {
	Version     int    `json:"version" yaml:"version"`
	LastUpdated string `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Days        []Day  `json:"days" yaml:"days"`
}

// Day is one numbered batch of items
type Day struct {
	DayNumber int                `json:"dayNumber" yaml:"dayNumber"`
	CreatedAt string             `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Items     []models.VocabItem `json:"items" yaml:"items"`
}

// DayKey returns the category key used for day n
func DayKey(n int) string {
	return fmt.Sprintf("Day %d", n)
}

// LoadFile reads a JSON or YAML data file into a catalog
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog file")
	}
	defer f.Close()

	return Decode(f, format)
}

// Decode parses a data file from r
func Decode(r io.Reader, format Format) (*Catalog, error) {
	var data DataFile
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON catalog")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&data); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML catalog")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}

	if data.Version != 0 && data.Version != SchemaVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, want %d", data.Version, SchemaVersion)
	}
	return New(data.Flatten())
}

// Flatten lists the items of all days ordered by day number, each tagged
// with its day key.
func (d DataFile) Flatten() []models.VocabItem {
	days := make([]Day, len(d.Days))
	copy(days, d.Days)
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].DayNumber < days[j].DayNumber
	})

	var items []models.VocabItem
	for _, day := range days {
		for _, item := range day.Items {
			item.Category = DayKey(day.DayNumber)
			items = append(items, item)
		}
	}
	return items
}
