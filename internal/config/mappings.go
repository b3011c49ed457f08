package config

// Fixed mapping tables between the Japanese labels used on the criteria
// sheet and the numeric ids / enum values the itandi BB API expects.
// These are configuration data, not logic; they change only when the
// intake form or the API changes.

// prefectureIDs maps prefecture names to the API's prefecture_id.
var prefectureIDs = map[string]int{
	"北海道": 1, "青森県": 2, "岩手県": 3, "宮城県": 4, "秋田県": 5,
	"山形県": 6, "福島県": 7, "茨城県": 8, "栃木県": 9, "群馬県": 10,
	"埼玉県": 11, "千葉県": 12, "東京都": 13, "神奈川県": 14, "新潟県": 15,
	"富山県": 16, "石川県": 17, "福井県": 18, "山梨県": 19, "長野県": 20,
	"岐阜県": 21, "静岡県": 22, "愛知県": 23, "三重県": 24, "滋賀県": 25,
	"京都府": 26, "大阪府": 27, "兵庫県": 28, "奈良県": 29, "和歌山県": 30,
	"鳥取県": 31, "島根県": 32, "岡山県": 33, "広島県": 34, "山口県": 35,
	"徳島県": 36, "香川県": 37, "愛媛県": 38, "高知県": 39, "福岡県": 40,
	"佐賀県": 41, "長崎県": 42, "熊本県": 43, "大分県": 44, "宮崎県": 45,
	"鹿児島県": 46, "沖縄県": 47,
}

// equipmentIDs maps both the intake form's こだわり条件 labels and the
// itandi BB internal names to option ids.
var equipmentIDs = map[string]int{
	"バス・トイレ別":       11010,
	"エアコン":          11020,
	"エアコン付":         11020,
	"室内洗濯機置場":       11030,
	"独立洗面台":         11040,
	"2口以上コンロ":       11050,
	"追い焚き":          11060,
	"温水洗浄便座":        11070,
	"オートロック":        11080,
	"モニター付きインターホン": 11090,
	"宅配ボックス":        11100,
	"浴室乾燥機":         11110,
	"ペット可":          11120,
	"ペット相談":         11120,
}

// layoutAliases normalizes SUUMO-style layout labels to API values.
var layoutAliases = map[string]string{
	"ワンルーム": "1R",
	"5K以上":  "5K",
}

// structureTypes maps Japanese structure labels to API values.
var structureTypes = map[string]string{
	"木造":    "wooden",
	"ブロック":  "block",
	"鉄骨造":   "steel",
	"軽量鉄骨造": "lightweight_steel",
	"RC":    "rc",
	"SRC":   "src",
	"PC":    "pc",
	"HPC":   "hpc",
	"ALC":   "alc",
	"CFT":   "cft",
}

// buildingTypes maps Japanese building-type labels to API values.
var buildingTypes = map[string]string{
	"マンション":   "mansion",
	"アパート":    "apartment",
	"一戸建て":    "detached_house",
	"テラスハウス":  "terraced_house",
	"タウンハウス":  "town_house",
	"シェアハウス":  "share_house",
}

// updateDays maps 情報更新日 labels to a day count.
var updateDays = map[string]int{
	"1日以内":  1,
	"3日以内":  3,
	"7日以内":  7,
	"14日以内": 14,
	"30日以内": 30,
}

// PrefectureID returns the API id for a prefecture name, or 0 if unknown.
func PrefectureID(name string) int {
	return prefectureIDs[name]
}

// EquipmentID returns the option id for an equipment label, or 0 if unknown.
func EquipmentID(label string) int {
	return equipmentIDs[label]
}

// NormalizeLayout converts a form layout label to its API value.
// Labels without an alias pass through unchanged.
func NormalizeLayout(label string) string {
	if v, ok := layoutAliases[label]; ok {
		return v
	}
	return label
}

// StructureType returns the API value for a structure label, or "" if unknown.
func StructureType(label string) string {
	return structureTypes[label]
}

// BuildingType returns the API value for a building-type label, or "" if unknown.
func BuildingType(label string) string {
	return buildingTypes[label]
}

// UpdateDays returns the day count for an update-recency label, or 0 if unknown.
func UpdateDays(label string) int {
	return updateDays[label]
}
