package store

import (
	"strings"

	"itandi_watch/internal/config"
	"itandi_watch/internal/jptext"
	"itandi_watch/internal/model"
)

// Criteria sheet columns (A through V), as produced by the intake form:
//
//	A  timestamp            L  private-rail routes (京成/京急/小田急)
//	B  customer name        M  other routes
//	C  reason               N  station names
//	D  prefecture           O  rent ceiling ("10万円")
//	E  cities               P  layouts ("ワンルーム" included)
//	F  JR routes            Q  station walk ("5分以内")
//	G  Tokyo Metro routes   R  floor area minimum ("20m²")
//	H  Toei routes          S  building age ("5年以内" or "新築")
//	I  Tokyu routes         T  building types
//	J  Seibu/Tobu routes    U  equipment wishes (plus "2階以上")
//	K  Keio routes          V  free-text notes
const (
	colName         = 1
	colReason       = 2
	colPrefecture   = 3
	colCities       = 4
	colRoutesFirst  = 5
	colRoutesLast   = 12
	colStations     = 13
	colRentMax      = 14
	colLayouts      = 15
	colWalk         = 16
	colAreaMin      = 17
	colBuildingAge  = 18
	colBuildingType = 19
	colEquipment    = 20
	colNotes        = 21
)

// compound form option covering two API building types
const detachedOrTerraced = "一戸建て・テラスハウス"

// ParseCriteriaRow converts one criteria sheet row into search criteria.
// Returns ok=false for rows without a customer name (blank lines, test
// submissions). Reprint-permitted listings only; the business only deals
// in advertisable stock.
func ParseCriteriaRow(row []string) (model.SearchCriteria, bool) {
	name := strings.TrimSpace(cell(row, colName))
	if name == "" {
		return model.SearchCriteria{}, false
	}

	var routes []string
	for i := colRoutesFirst; i <= colRoutesLast; i++ {
		routes = append(routes, SplitList(cell(row, i))...)
	}

	var layouts []string
	for _, l := range SplitList(cell(row, colLayouts)) {
		layouts = append(layouts, config.NormalizeLayout(l))
	}

	var buildingTypes []string
	for _, bt := range SplitList(cell(row, colBuildingType)) {
		if bt == detachedOrTerraced {
			buildingTypes = append(buildingTypes,
				config.BuildingType("一戸建て"), config.BuildingType("テラスハウス"))
			continue
		}
		if v := config.BuildingType(bt); v != "" {
			buildingTypes = append(buildingTypes, v)
		}
	}

	var equipment []int
	minFloor := 0
	for _, item := range SplitList(cell(row, colEquipment)) {
		if item == "2階以上" {
			minFloor = 2
			continue
		}
		if id := config.EquipmentID(item); id != 0 {
			equipment = append(equipment, id)
		}
	}

	return model.SearchCriteria{
		Name:          name,
		Reason:        strings.TrimSpace(cell(row, colReason)),
		Prefecture:    strings.TrimSpace(cell(row, colPrefecture)),
		Cities:        SplitList(cell(row, colCities)),
		Routes:        routes,
		Stations:      SplitList(cell(row, colStations)),
		RentMax:       jptext.Yen(cell(row, colRentMax)),
		Layouts:       layouts,
		WalkMinutes:   jptext.Minutes(cell(row, colWalk)),
		AreaMin:       jptext.SquareMeters(cell(row, colAreaMin)),
		BuildingAge:   jptext.Years(cell(row, colBuildingAge)),
		BuildingTypes: buildingTypes,
		MinFloor:      minFloor,
		EquipmentIDs:  equipment,
		AdReprintOnly: true,
		Notes:         strings.TrimSpace(cell(row, colNotes)),
	}, true
}

// SplitList splits a form checkbox value. Google Forms stores these
// comma separated but manual edits show up with semicolons too.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(value, ";", ","), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
