// Package model defines the domain types used across the application.
package model

import "time"

// SearchCriteria holds one customer's saved search filters.
// Loaded fresh from the criteria sheet on every run; never mutated
// after loading, except for ThreadID which is filled in when a
// notification thread is created for the customer.
type SearchCriteria struct {
	Name             string
	Reason           string
	Prefecture       string
	Cities           []string
	Routes           []string
	Stations         []string
	WalkMinutes      int // 0 = unset
	RentMin          int // yen, 0 = unset
	RentMax          int // yen, 0 = unset
	Layouts          []string
	AreaMin          float64 // m², 0 = unset
	AreaMax          float64 // m², 0 = unset
	BuildingAge      int     // years, 0 = unset
	BuildingTypes    []string
	StructureTypes   []string
	MinFloor         int // 0 = unset
	EquipmentIDs     []int
	AdReprintOnly    bool
	DealTypes        []string
	UpdateWithinDays int // 0 = unset
	Notes            string
	ThreadID         string // existing notification thread, if any
}

// Listing represents one rentable room returned by a search.
type Listing struct {
	BuildingID    int64
	RoomID        int64
	BuildingName  string
	Address       string
	Rent          int // yen
	ManagementFee int // yen
	Deposit       string
	KeyMoney      string
	Layout        string
	Area          float64 // m²
	Floor         int
	BuildingAge   string
	StationInfo   string
	URL           string
	ImageURL      string
	ImageURLs     []string // detail-page images, filled by enrichment
}

// SeenKey identifies a listing that has been surfaced to a customer.
// The (customer name, room id) pair is the natural dedup key.
type SeenKey struct {
	Customer string
	RoomID   int64
}

// Key returns the dedup key for a listing surfaced to the named customer.
func (l Listing) Key(customer string) SeenKey {
	return SeenKey{Customer: customer, RoomID: l.RoomID}
}

// SeenEntry is one row appended to the seen/pending store after a
// listing has been surfaced.
type SeenEntry struct {
	Customer     string
	BuildingID   int64
	RoomID       int64
	BuildingName string
	Rent         int
	URL          string
	NotifiedAt   time.Time
}
