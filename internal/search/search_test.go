package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"itandi_watch/internal/auth"
	"itandi_watch/internal/model"
)

type mockSession struct {
	// one result per PostJSON call, in order; the last repeats
	results []*auth.APIResult
	posts   [][]byte
	getFn   func(url string) (*auth.APIResult, error)
}

func (m *mockSession) PostJSON(_ context.Context, _ string, payload any) (*auth.APIResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	m.posts = append(m.posts, raw)

	idx := len(m.posts) - 1
	if idx >= len(m.results) {
		idx = len(m.results) - 1
	}
	return m.results[idx], nil
}

func (m *mockSession) Get(_ context.Context, url string) (*auth.APIResult, error) {
	if m.getFn == nil {
		return &auth.APIResult{Status: 404}, nil
	}
	return m.getFn(url)
}

func (m *mockSession) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(session auth.Session) *Client {
	c := New(Options{
		Session:    session,
		SearchURL:  "https://api.example.com/search",
		StationURL: "https://api.example.com/train_stations",
		BaseURL:    "https://app.example.com",
		Log:        discardLogger(),
	})
	c.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, jst) }
	return c
}

// pageJSON builds a minimal one-room response page.
func pageJSON(roomID int64, hasNext bool) []byte {
	body := map[string]any{
		"buildings": []any{
			map[string]any{
				"property_id": 100,
				"name":        "テストマンション",
				"rooms": []any{
					map[string]any{"id": roomID, "rent": 80000},
				},
			},
		},
		"meta": map[string]any{"next_bucket_exists": hasNext},
	}
	raw, _ := json.Marshal(body)
	return raw
}

func TestBuildPayload(t *testing.T) {
	criteria := model.SearchCriteria{
		Name:             "山田",
		Prefecture:       "東京都",
		Cities:           []string{"千代田区", "中央区"},
		RentMin:          50000,
		RentMax:          120000,
		Layouts:          []string{"1LDK", "2DK"},
		AreaMin:          25.5,
		BuildingAge:      10,
		WalkMinutes:      5,
		StructureTypes:   []string{"rc", "src"},
		BuildingTypes:    []string{"mansion"},
		MinFloor:         2,
		EquipmentIDs:     []int{11020, 11080},
		AdReprintOnly:    true,
		DealTypes:        []string{"brokerage"},
		UpdateWithinDays: 7,
	}
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, jst)

	payload := BuildPayload(criteria, []int64{4001}, now)

	wantFilter := map[string]any{
		"address:in": []map[string]any{
			{"city": "千代田区", "prefecture_id": 13},
			{"city": "中央区", "prefecture_id": 13},
		},
		"rent:gteq":                 50000,
		"rent:lteq":                 120000,
		"room_layout:in":            []string{"1LDK", "2DK"},
		"floor_area_amount:gteq":    25.5,
		"building_age:lteq":         10,
		"station_walk_minutes:lteq": 5,
		"train_station_id:in":       []int64{4001},
		"structure_type:in":         []string{"rc", "src"},
		"building_detail_type:in":   []string{"mansion"},
		"floor:gteq":                2,
		"option_id:all_in":          []int{11020, 11080},
		"offer_advertisement_reprint_available_type:in": []string{"available"},
		"offer_deal_type:in":                  []string{"brokerage"},
		"offer_conditions_updated_at:gteq":    "2025-06-08T00:00:00.000",
	}
	if diff := cmp.Diff(wantFilter, payload["filter"]); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPayloadEmptyCriteria(t *testing.T) {
	payload := BuildPayload(model.SearchCriteria{Name: "佐藤"}, nil, time.Now())
	filter, ok := payload["filter"].(map[string]any)
	if !ok {
		t.Fatalf("filter is %T, want map", payload["filter"])
	}
	if len(filter) != 0 {
		t.Errorf("empty criteria produced filters: %v", filter)
	}
}

func TestSearchPagination(t *testing.T) {
	tests := []struct {
		name      string
		results   []*auth.APIResult
		wantPosts int
		wantRooms int
	}{
		{
			name: "stops when next flag clears",
			results: []*auth.APIResult{
				{Status: 200, Body: pageJSON(1, true)},
				{Status: 200, Body: pageJSON(2, true)},
				{Status: 200, Body: pageJSON(3, true)},
				{Status: 200, Body: pageJSON(4, false)},
			},
			wantPosts: 4,
			wantRooms: 4,
		},
		{
			name: "hard cap at ten pages",
			results: []*auth.APIResult{
				{Status: 200, Body: pageJSON(1, true)},
			},
			wantPosts: 10,
			wantRooms: 10,
		},
		{
			name: "single page",
			results: []*auth.APIResult{
				{Status: 200, Body: pageJSON(1, false)},
			},
			wantPosts: 1,
			wantRooms: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &mockSession{results: tt.results}
			client := newTestClient(session)

			listings, err := client.Search(context.Background(), model.SearchCriteria{Name: "山田"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantPosts, len(session.posts)); diff != "" {
				t.Errorf("request count mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRooms, len(listings)); diff != "" {
				t.Errorf("listing count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchRequestsAdvancePageNumber(t *testing.T) {
	session := &mockSession{results: []*auth.APIResult{
		{Status: 200, Body: pageJSON(1, true)},
		{Status: 200, Body: pageJSON(2, false)},
	}}
	client := newTestClient(session)

	if _, err := client.Search(context.Background(), model.SearchCriteria{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, raw := range session.posts {
		var payload struct {
			Page struct {
				Page  int `json:"page"`
				Limit int `json:"limit"`
			} `json:"page"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("decode recorded payload: %v", err)
		}
		if payload.Page.Page != i+1 {
			t.Errorf("request %d carried page %d", i+1, payload.Page.Page)
		}
		if payload.Page.Limit != pageLimit {
			t.Errorf("request %d carried limit %d", i+1, payload.Page.Limit)
		}
	}
}

func TestSearchStatusTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "session expired", status: 401, wantErr: ErrSessionExpired},
		{name: "bad filter", status: 422, wantErr: ErrBadFilter},
		{name: "rate limited", status: 429, wantErr: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &mockSession{results: []*auth.APIResult{
				{Status: tt.status, Body: []byte(`{"error":"x"}`)},
			}}
			client := newTestClient(session)

			_, err := client.Search(context.Background(), model.SearchCriteria{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	body := []byte(`{
		"room_total_count": 3,
		"buildings": [
			{
				"property_id": 100,
				"name": "サンプルマンション",
				"address_text": "東京都千代田区1-2-3",
				"building_age_text": "築15年",
				"image_url": "https://img.example.com/bldg100.jpg",
				"nearby_train_station_texts": ["山手線 東京駅 徒歩5分"],
				"rooms": [
					{"id": 11, "rent": 120000, "management_fee": 10000,
					 "layout": "1LDK", "floor_area_amount": 40.5, "floor": 3,
					 "deposit": "1ヶ月", "key_money": "なし"}
				]
			},
			{
				"property_id": 200,
				"name": "第二ビル",
				"rooms": [
					{"id": 21, "rent_text": "12万円", "room_layout": "2DK",
					 "floor_area_text": "25.5㎡",
					 "image_url": "https://img.example.com/room21.jpg"},
					{"rent": 90000},
					{"id": 23, "rent": 0, "rent_text": "8.5万円",
					 "deposit": 0, "deposit_text": "1ヶ月"}
				]
			}
		],
		"meta": {"next_bucket_exists": false}
	}`)

	listings, hasNext, err := ParseResponse(body, "https://itandibb.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasNext {
		t.Error("hasNext = true, want false")
	}

	want := []model.Listing{
		{
			BuildingID: 100, RoomID: 11,
			BuildingName: "サンプルマンション",
			Address:      "東京都千代田区1-2-3",
			Rent:         120000, ManagementFee: 10000,
			Deposit: "1ヶ月", KeyMoney: "なし",
			Layout: "1LDK", Area: 40.5, Floor: 3,
			BuildingAge: "築15年",
			StationInfo: "山手線 東京駅 徒歩5分",
			URL:         "https://itandibb.com/rent_room_buildings/100",
			ImageURL:    "https://img.example.com/bldg100.jpg",
		},
		{
			BuildingID: 200, RoomID: 21,
			BuildingName: "第二ビル",
			Rent:         120000,
			Layout:       "2DK", Area: 25.5,
			URL:      "https://itandibb.com/rent_room_buildings/200",
			ImageURL: "https://img.example.com/room21.jpg",
		},
		{
			BuildingID: 200, RoomID: 23,
			BuildingName: "第二ビル",
			Rent:         85000,
			Deposit:      "1ヶ月",
			URL:          "https://itandibb.com/rent_room_buildings/200",
		},
	}
	if diff := cmp.Diff(want, listings); diff != "" {
		t.Errorf("listings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseToleratesBrokenShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "no buildings key", body: `{"total_count": 0}`, want: 0},
		{name: "buildings not a list", body: `{"buildings": {"a": 1}}`, want: 0},
		{name: "building without rooms", body: `{"buildings": [{"property_id": 1, "name": "x"}]}`, want: 0},
		{name: "room entries not objects", body: `{"buildings": [{"property_id": 1, "rooms": [1, "two"]}]}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listings, _, err := ParseResponse([]byte(tt.body), "https://itandibb.com")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(listings) != tt.want {
				t.Errorf("got %d listings, want %d", len(listings), tt.want)
			}
		})
	}
}

func TestResolveStations(t *testing.T) {
	stations := map[string][]stationEntry{
		"本町": {
			{ID: 501, Name: "本町", PrefectureID: 27},
			{ID: 502, Name: "本町三丁目", PrefectureID: 13},
		},
		"東京": {
			{ID: 601, Name: "東京", PrefectureID: 13},
		},
	}

	session := &mockSession{getFn: func(rawURL string) (*auth.APIResult, error) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		entries := stations[u.Query().Get("name")]
		raw, _ := json.Marshal(stationResponse{TrainStations: entries})
		return &auth.APIResult{Status: 200, Body: raw}, nil
	}}
	client := newTestClient(session)

	tests := []struct {
		name     string
		criteria model.SearchCriteria
		want     []int64
	}{
		{
			name: "exact match",
			criteria: model.SearchCriteria{
				Prefecture: "東京都",
				Stations:   []string{"東京"},
			},
			want: []int64{601},
		},
		{
			name: "prefecture rejects homonym from another prefecture",
			criteria: model.SearchCriteria{
				Prefecture: "東京都",
				Stations:   []string{"本町"},
			},
			want: nil,
		},
		{
			name: "no prefecture accepts first exact label",
			criteria: model.SearchCriteria{
				Stations: []string{"本町"},
			},
			want: []int64{501},
		},
		{
			name: "unknown station dropped",
			criteria: model.SearchCriteria{
				Prefecture: "東京都",
				Stations:   []string{"存在しない駅", "東京"},
			},
			want: []int64{601},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.resolveStations(context.Background(), tt.criteria)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("station ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
