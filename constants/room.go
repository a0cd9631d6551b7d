package constants

import (
	"strings"
)

type RoomType string

const (
	RoomLiving         RoomType = "living"
	RoomKitchen        RoomType = "kitchen"
	RoomBedroom        RoomType = "bedroom"
	RoomMasterBedroom  RoomType = "master-bedroom"
	RoomBathroom       RoomType = "bathroom"
	RoomMasterBathroom RoomType = "master-bathroom"
	RoomDining         RoomType = "dining"
	RoomGarage         RoomType = "garage"
	RoomHallway        RoomType = "hallway"
	RoomBasement       RoomType = "basement"
	RoomAttic          RoomType = "attic"
	RoomCloset         RoomType = "closet"
	RoomLaundry        RoomType = "laundry"
	RoomOffice         RoomType = "office"
	RoomDen            RoomType = "den"
)

// RoomKeyword pairs the label searched for on a drawing with the room type it
// produces.
type RoomKeyword struct {
	Name string
	Type RoomType
}

// RoomKeywords is the fixed catalog of room labels recognized on a drawing,
// in scan order.
var RoomKeywords = []RoomKeyword{
	{Name: "Living Room", Type: RoomLiving},
	{Name: "Kitchen", Type: RoomKitchen},
	{Name: "Bedroom", Type: RoomBedroom},
	{Name: "Master Bedroom", Type: RoomMasterBedroom},
	{Name: "Bathroom", Type: RoomBathroom},
	{Name: "Master Bathroom", Type: RoomMasterBathroom},
	{Name: "Dining Room", Type: RoomDining},
	{Name: "Garage", Type: RoomGarage},
	{Name: "Hallway", Type: RoomHallway},
	{Name: "Basement", Type: RoomBasement},
	{Name: "Attic", Type: RoomAttic},
	{Name: "Closet", Type: RoomCloset},
	{Name: "Laundry", Type: RoomLaundry},
	{Name: "Office", Type: RoomOffice},
	{Name: "Den", Type: RoomDen},
}

// MatchRoomKeywords returns the room keywords found in text, case-insensitively.
// A keyword that only matched as part of a longer matching keyword
// ("Bedroom" inside "Master Bedroom") is dropped.
func MatchRoomKeywords(text string) []RoomKeyword {
	lower := strings.ToLower(text)
	var hits []RoomKeyword
	for _, kw := range RoomKeywords {
		if strings.Contains(lower, strings.ToLower(kw.Name)) {
			hits = append(hits, kw)
		}
	}
	if len(hits) < 2 {
		return hits
	}

	out := hits[:0:0]
	for _, h := range hits {
		if !coveredByLonger(lower, h, hits) {
			out = append(out, h)
		}
	}
	return out
}

// coveredByLonger reports whether every occurrence of kw in lower sits inside
// an occurrence of a longer matched keyword.
func coveredByLonger(lower string, kw RoomKeyword, hits []RoomKeyword) bool {
	needle := strings.ToLower(kw.Name)
	var spans [][2]int
	for _, other := range hits {
		on := strings.ToLower(other.Name)
		if len(on) <= len(needle) || !strings.Contains(on, needle) {
			continue
		}
		spans = append(spans, occurrences(lower, on)...)
	}
	for _, occ := range occurrences(lower, needle) {
		inside := false
		for _, sp := range spans {
			if sp[0] <= occ[0] && occ[1] <= sp[1] {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}
	return true
}

func occurrences(s, sub string) [][2]int {
	var out [][2]int
	for from := 0; from <= len(s)-len(sub); {
		idx := strings.Index(s[from:], sub)
		if idx < 0 {
			break
		}
		start := from + idx
		out = append(out, [2]int{start, start + len(sub)})
		from = start + 1
	}
	return out
}
