package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"RSILab/internal/model"
)

// cacheFile is the on-disk layout of one cached history request.
type cacheFile struct {
	Symbol         string             `json:"symbol"`
	Start          time.Time          `json:"start"`
	End            time.Time          `json:"end"`
	FetchedThrough time.Time          `json:"fetched_through"` // last date covered by a fetch
	FetchedAt      time.Time          `json:"fetched_at"`
	Points         []model.PricePoint `json:"points"`
}

// CachedFetcher wraps a Fetcher with a JSON file cache per (symbol, range).
// A cached range that does not yet reach its end date is extended with a fetch
// starting the day after the last covered date.
type CachedFetcher struct {
	Fetcher Fetcher
	Dir     string
	now     func() time.Time
}

// NewCachedFetcher creates a cache under dir (default data/cache).
func NewCachedFetcher(f Fetcher, dir string) *CachedFetcher {
	if dir == "" {
		dir = "data/cache"
	}
	return &CachedFetcher{Fetcher: f, Dir: dir, now: time.Now}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() + "+cache" }

var pathReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

// Path returns the cache file for a request.
func (c *CachedFetcher) Path(symbol string, start, end time.Time) string {
	period := fmt.Sprintf("%s_%s", dateOf(start).Format("20060102"), dateOf(end).Format("20060102"))
	return filepath.Join(c.Dir, fmt.Sprintf("%s_%s.json", pathReplacer.Replace(symbol), period))
}

func (c *CachedFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	start, end = dateOf(start), dateOf(end)
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return model.PriceSeries{}, fmt.Errorf("create cache dir: %w", err)
	}
	path := c.Path(symbol, start, end)

	cached, err := loadCache(path)
	if err != nil {
		log.Printf("[WARN] ignoring unreadable cache %s: %v", path, err)
		cached = nil
	}

	today := dateOf(c.now())
	through := end
	if today.Before(through) {
		through = today
	}

	fetchFrom := start
	if cached != nil {
		fetchFrom = cached.FetchedThrough.AddDate(0, 0, 1)
	}
	if fetchFrom.After(through) {
		return c.result(symbol, cached, start, end), nil
	}

	fresh, err := c.Fetcher.FetchHistory(ctx, symbol, fetchFrom, through)
	if err != nil {
		if cached != nil && len(cached.Points) > 0 {
			log.Printf("[WARN] %s refresh from %s failed, using cached data: %v",
				symbol, fetchFrom.Format("2006-01-02"), err)
			return c.result(symbol, cached, start, end), nil
		}
		return model.PriceSeries{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	if cached == nil {
		cached = &cacheFile{Symbol: symbol, Start: start, End: end}
	}
	added := len(fresh.Points)
	cached.Points = model.MergePoints(cached.Points, fresh.Points)
	cached.FetchedThrough = through
	cached.FetchedAt = c.now()
	if err := saveCache(path, cached); err != nil {
		return model.PriceSeries{}, fmt.Errorf("save cache: %w", err)
	}
	log.Printf("[INFO] %s cache updated via %s: +%d points, %d total (%s)",
		symbol, c.Fetcher.Name(), added, len(cached.Points), path)
	return c.result(symbol, cached, start, end), nil
}

func (c *CachedFetcher) result(symbol string, cf *cacheFile, start, end time.Time) model.PriceSeries {
	if cf == nil {
		return model.PriceSeries{Symbol: symbol}
	}
	return model.PriceSeries{Symbol: symbol, Points: cf.Points}.Between(start, end)
}

// loadCache returns nil, nil when the file does not exist.
func loadCache(path string) (*cacheFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// saveCache writes to a temp file and renames it into place.
func saveCache(path string, cf *cacheFile) error {
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
