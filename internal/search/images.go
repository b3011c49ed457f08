package search

import (
	"context"
	"encoding/json"
	"fmt"

	"itandi_watch/internal/model"
)

// EnrichImages fills each listing's full image set from its detail
// endpoint. Best-effort: a failed or unparseable detail response leaves
// the listing with whatever thumbnail the search page provided.
func (c *Client) EnrichImages(ctx context.Context, listings []model.Listing) {
	if c.opts.DetailURL == "" {
		return
	}
	for i := range listings {
		urls, err := c.fetchImages(ctx, listings[i].RoomID)
		if err != nil {
			c.log.Warn("image enrichment failed", "room_id", listings[i].RoomID, "error", err)
			continue
		}
		listings[i].ImageURLs = urls
		if listings[i].ImageURL == "" && len(urls) > 0 {
			listings[i].ImageURL = urls[0]
		}
	}
}

func (c *Client) fetchImages(ctx context.Context, roomID int64) ([]string, error) {
	res, err := c.opts.Session.Get(ctx, fmt.Sprintf(c.opts.DetailURL, roomID))
	if err != nil {
		return nil, err
	}
	if res.Status != 200 {
		return nil, fmt.Errorf("detail api status %d", res.Status)
	}

	var doc map[string]any
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode detail response: %w", err)
	}

	// images have been seen at the top level and nested under rent_room
	images, _ := doc["images"].([]any)
	if images == nil {
		if room, ok := doc["rent_room"].(map[string]any); ok {
			images, _ = room["images"].([]any)
		}
	}

	var urls []string
	for _, raw := range images {
		switch v := raw.(type) {
		case string:
			urls = append(urls, v)
		case map[string]any:
			if u := asString(v, "url", "image_url"); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls, nil
}
