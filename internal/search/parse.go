package search

import (
	"encoding/json"
	"fmt"

	"itandi_watch/internal/jptext"
	"itandi_watch/internal/model"
)

// ParseResponse flattens one page of the search response — building
// groups each holding one or more rooms — into listings, and reports
// whether another page exists.
//
// The response shape was reverse-engineered and has changed between
// observations: some revisions carry plain numeric fields, others
// pre-formatted display strings ("12万円", "25.5m²"), and field names
// vary (rent/rent_text, layout/room_layout/layout_text). The parser
// accepts every shape seen so far and skips entries it cannot identify
// rather than failing the page.
func ParseResponse(body []byte, baseURL string) ([]model.Listing, bool, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}

	var listings []model.Listing
	buildings, _ := doc["buildings"].([]any)
	for _, raw := range buildings {
		bldg, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		buildingID := asInt64(bldg["property_id"])
		buildingName := asString(bldg, "name")
		address := asString(bldg, "address_text", "address")
		buildingAge := asString(bldg, "building_age_text")
		buildingImage := asString(bldg, "image_url")

		stationInfo := ""
		if texts, ok := bldg["nearby_train_station_texts"].([]any); ok && len(texts) > 0 {
			stationInfo, _ = texts[0].(string)
		}

		rooms, _ := bldg["rooms"].([]any)
		for _, rawRoom := range rooms {
			room, ok := rawRoom.(map[string]any)
			if !ok {
				continue
			}
			roomID := asInt64(room["id"], room["room_id"])
			if roomID == 0 {
				// a room without an identifier cannot be deduplicated
				continue
			}

			imageURL := asString(room, "image_url")
			if imageURL == "" {
				imageURL = buildingImage
			}

			listings = append(listings, model.Listing{
				BuildingID:    buildingID,
				RoomID:        roomID,
				BuildingName:  buildingName,
				Address:       address,
				Rent:          asYen(room, "rent", "rent_text"),
				ManagementFee: asYen(room, "management_fee", "management_fee_text"),
				Deposit:       asString(room, "deposit", "deposit_text"),
				KeyMoney:      asString(room, "key_money", "key_money_text"),
				Layout:        asString(room, "layout", "room_layout", "layout_text"),
				Area:          asArea(room, "floor_area_amount", "area", "floor_area_text"),
				Floor:         int(asInt64(room["floor"])),
				BuildingAge:   buildingAge,
				StationInfo:   stationInfo,
				URL:           fmt.Sprintf("%s/rent_room_buildings/%d", baseURL, buildingID),
				ImageURL:      imageURL,
			})
		}
	}

	return listings, hasNextPage(doc), nil
}

// hasNextPage checks the pagination flag in both locations it has been
// observed: under meta and under aggregation.
func hasNextPage(doc map[string]any) bool {
	if meta, ok := doc["meta"].(map[string]any); ok {
		if next, ok := meta["next_bucket_exists"].(bool); ok && next {
			return true
		}
	}
	if agg, ok := doc["aggregation"].(map[string]any); ok {
		if next, ok := agg["next_bucket_exists"].(bool); ok && next {
			return true
		}
	}
	return false
}

// asString returns the first non-empty string among the given keys,
// rendering numbers when the field arrives as one. Zero numerics fall
// through like empty strings so a later display-text key can win.
func asString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return fmt.Sprintf("%v", v)
			}
		}
	}
	return ""
}

// asInt64 returns the first value convertible to a non-zero integer.
func asInt64(vals ...any) int64 {
	for _, v := range vals {
		switch t := v.(type) {
		case float64:
			if t != 0 {
				return int64(t)
			}
		case string:
			if n := jptext.Yen(t); n != 0 {
				return int64(n)
			}
		}
	}
	return 0
}

// asYen reads a price that may arrive as a plain number of yen or as
// display text ("12万円").
func asYen(m map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v != 0 {
				return int(v)
			}
		case string:
			if n := jptext.Yen(v); n != 0 {
				return n
			}
		}
	}
	return 0
}

// asArea reads an area that may arrive as a number or as "25.5m²" text.
func asArea(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v != 0 {
				return v
			}
		case string:
			if a := jptext.SquareMeters(v); a != 0 {
				return a
			}
		}
	}
	return 0
}
