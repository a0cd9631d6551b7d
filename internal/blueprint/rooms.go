package blueprint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

var floorPattern = regexp.MustCompile(`(?i)floor\s*(\d+)`)

const defaultFloor = 1

// matchRoomPatterns is where template-driven room detection would go. No
// matching algorithm is defined for room patterns, so it always reports
// ErrNotImplemented and the keyword scan is used instead.
func matchRoomPatterns(tpl *entity.Template, _ []docextract.Token) ([]entity.ExtractedRoom, error) {
	return nil, common.NotImplemented(fmt.Sprintf("template %s: room patterns", tpl.TemplateID))
}

// detectRooms scans tokens for room keywords. Every room lands on floor 1:
// tokens carry no reliable association with a floor label.
func (p *Processor) detectRooms(tokens []docextract.Token) []entity.ExtractedRoom {
	seen := map[string]struct{}{}
	var rooms []entity.ExtractedRoom

	for _, t := range tokens {
		if strings.Contains(strings.ToLower(t.Str), "legend") {
			continue
		}
		for _, kw := range constants.MatchRoomKeywords(t.Str) {
			key := entity.RoomKey(kw.Name, defaultFloor)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rooms = append(rooms, entity.ExtractedRoom{
				RoomID: p.newID(),
				Name:   kw.Name,
				Type:   kw.Type,
				Floor:  defaultFloor,
			})
		}
	}

	if len(rooms) == 0 {
		rooms = append(rooms, entity.ExtractedRoom{
			RoomID: p.newID(),
			Name:   constants.DefaultRoomName,
			Type:   constants.RoomLiving,
			Floor:  defaultFloor,
		})
	}
	return rooms
}

// detectFloors returns the highest "floor N" referenced, at least 1.
func detectFloors(tokens []docextract.Token) int {
	floors := defaultFloor
	for _, t := range tokens {
		for _, m := range floorPattern.FindAllStringSubmatch(t.Str, -1) {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > floors {
				floors = n
			}
		}
	}
	return floors
}

// attachDevices fills each room with its room type's standard bundle.
func (p *Processor) attachDevices(rooms []entity.ExtractedRoom) {
	for i := range rooms {
		bundle := constants.DeviceBundleFor(rooms[i].Type)
		devices := make([]entity.ExtractedDevice, 0, len(bundle))
		for _, alloc := range bundle {
			devices = append(devices, entity.ExtractedDevice{
				DeviceID: p.newID(),
				Type:     alloc.Type,
				Count:    alloc.Count,
				Notes:    fmt.Sprintf("standard %s allocation", rooms[i].Type),
			})
		}
		rooms[i].Devices = devices
	}
}

// deviceMentions counts device keyword hits per type. It is reported for
// diagnostics only; device counts come from the room bundles.
func deviceMentions(tokens []docextract.Token) map[constants.DeviceType]int {
	out := map[constants.DeviceType]int{}
	for _, t := range tokens {
		for _, dp := range constants.DevicePatterns {
			if dp.Pattern.MatchString(t.Str) {
				out[dp.Type]++
			}
		}
	}
	return out
}
