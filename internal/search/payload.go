// Package search builds itandi BB search requests, paginates results,
// and parses the response shapes into listings.
package search

import (
	"time"

	"itandi_watch/internal/config"
	"itandi_watch/internal/model"
)

const (
	pageLimit = 20
	maxPages  = 10
)

var jst = loadJST()

func loadJST() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// BuildPayload maps one customer's criteria onto the search API's filter
// keys. Zero values mean "no filter". stationIDs come from a prior
// ResolveStations call; now anchors the update-recency cutoff.
func BuildPayload(c model.SearchCriteria, stationIDs []int64, now time.Time) map[string]any {
	filter := map[string]any{}

	if len(c.Cities) > 0 && c.Prefecture != "" {
		if prefID := config.PrefectureID(c.Prefecture); prefID != 0 {
			addrs := make([]map[string]any, 0, len(c.Cities))
			for _, city := range c.Cities {
				addrs = append(addrs, map[string]any{
					"city":          city,
					"prefecture_id": prefID,
				})
			}
			filter["address:in"] = addrs
		}
	}

	if c.RentMin > 0 {
		filter["rent:gteq"] = c.RentMin
	}
	if c.RentMax > 0 {
		filter["rent:lteq"] = c.RentMax
	}
	if len(c.Layouts) > 0 {
		filter["room_layout:in"] = c.Layouts
	}
	if c.AreaMin > 0 {
		filter["floor_area_amount:gteq"] = c.AreaMin
	}
	if c.AreaMax > 0 {
		filter["floor_area_amount:lteq"] = c.AreaMax
	}
	if c.BuildingAge > 0 {
		filter["building_age:lteq"] = c.BuildingAge
	}
	if c.WalkMinutes > 0 {
		filter["station_walk_minutes:lteq"] = c.WalkMinutes
	}
	if len(stationIDs) > 0 {
		filter["train_station_id:in"] = stationIDs
	}
	if len(c.StructureTypes) > 0 {
		filter["structure_type:in"] = c.StructureTypes
	}
	if len(c.BuildingTypes) > 0 {
		filter["building_detail_type:in"] = c.BuildingTypes
	}
	if c.MinFloor > 0 {
		filter["floor:gteq"] = c.MinFloor
	}
	if len(c.EquipmentIDs) > 0 {
		filter["option_id:all_in"] = c.EquipmentIDs
	}
	if c.AdReprintOnly {
		filter["offer_advertisement_reprint_available_type:in"] = []string{"available"}
	}
	if len(c.DealTypes) > 0 {
		filter["offer_deal_type:in"] = c.DealTypes
	}
	if c.UpdateWithinDays > 0 {
		cutoff := now.In(jst).AddDate(0, 0, -c.UpdateWithinDays)
		filter["offer_conditions_updated_at:gteq"] = cutoff.Format("2006-01-02") + "T00:00:00.000"
	}

	return map[string]any{
		"aggregation": map[string]any{
			"bucket_size":                 5,
			"field":                       "building_id",
			"next_bucket_existance_check": true,
		},
		"filter": filter,
		"page":   map[string]any{"limit": pageLimit, "page": 1},
		"sort":   []map[string]any{{"last_status_opened_at": "desc"}},
	}
}
