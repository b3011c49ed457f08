package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"itandi_watch/internal/config"
	"itandi_watch/internal/model"
)

type stationEntry struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PrefectureID int    `json:"prefecture_id"`
}

type stationResponse struct {
	TrainStations []stationEntry `json:"train_stations"`
}

// resolveStations turns the criteria's station names into numeric
// station ids. A name that cannot be resolved is logged and dropped;
// a partially filtered search is more useful than no search.
func (c *Client) resolveStations(ctx context.Context, criteria model.SearchCriteria) []int64 {
	if len(criteria.Stations) == 0 || c.opts.StationURL == "" {
		return nil
	}

	var ids []int64
	for _, name := range criteria.Stations {
		id, err := c.lookupStation(ctx, name, criteria.Prefecture)
		if err != nil {
			c.log.Warn("station lookup failed", "station", name, "error", err)
			continue
		}
		if id == 0 {
			c.log.Warn("station not found", "station", name, "prefecture", criteria.Prefecture)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// lookupStation resolves one station name. Matching is by exact label;
// when the criteria name a prefecture, candidates from other prefectures
// are rejected, because short station names collide across the country
// (a suburb 本町 must not match the Osaka 本町).
func (c *Client) lookupStation(ctx context.Context, name, prefecture string) (int64, error) {
	lookupURL := c.opts.StationURL + "?name=" + url.QueryEscape(name)
	res, err := c.opts.Session.Get(ctx, lookupURL)
	if err != nil {
		return 0, fmt.Errorf("station lookup request: %w", err)
	}
	if res.Status == 401 {
		return 0, ErrSessionExpired
	}
	if res.Status != 200 {
		return 0, fmt.Errorf("station lookup status %d", res.Status)
	}

	var out stationResponse
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return 0, fmt.Errorf("decode station lookup: %w", err)
	}

	prefID := config.PrefectureID(prefecture)
	for _, st := range out.TrainStations {
		if st.Name != name {
			continue
		}
		if prefID != 0 && st.PrefectureID != 0 && st.PrefectureID != prefID {
			continue
		}
		return st.ID, nil
	}
	return 0, nil
}
