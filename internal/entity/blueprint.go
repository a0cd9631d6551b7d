package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
)

// ExtractedDevice is a device count attached to one extracted room.
type ExtractedDevice struct {
	DeviceID string               `json:"deviceId"`
	Type     constants.DeviceType `json:"type"`
	Count    int                  `json:"count"`
	Notes    string               `json:"notes,omitempty"`
}

// ExtractedRoom is one room found on a drawing.
type ExtractedRoom struct {
	RoomID  string             `json:"roomId"`
	Name    string             `json:"name"`
	Type    constants.RoomType `json:"type"`
	Floor   int                `json:"floor"`
	Area    float64            `json:"area"`
	Devices []ExtractedDevice  `json:"devices"`
}

// Key is the per-floor, case-insensitive identity used to de-duplicate rooms.
func (r ExtractedRoom) Key() string {
	return RoomKey(r.Name, r.Floor)
}

// RoomKey builds the de-duplication key for a room name on a floor.
func RoomKey(name string, floor int) string {
	return strings.ToLower(strings.TrimSpace(name)) + "#" + strconv.Itoa(floor)
}

// Blueprint is the structured result of extracting one PDF.
type Blueprint struct {
	BlueprintID        string                    `json:"blueprintId"`
	ProjectID          string                    `json:"projectId"`
	S3Key              string                    `json:"s3Key"`
	JobName            string                    `json:"jobName"`
	JobAddress         string                    `json:"jobAddress"`
	JobNumber          string                    `json:"jobNumber"`
	ClassificationCode string                    `json:"classificationCode"`
	SquareFootage      float64                   `json:"squareFootage"`
	Floors             int                       `json:"floors"`
	Rooms              []ExtractedRoom           `json:"rooms"`
	TemplateID         *string                   `json:"templateId"`
	Status             constants.BlueprintStatus `json:"status"`
	PageCount          int                       `json:"pageCount"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
	CreatedBy          string                    `json:"createdBy"`
	UpdatedBy          string                    `json:"updatedBy"`
}

// DeviceCount sums device counts across all rooms.
func (b *Blueprint) DeviceCount() int {
	n := 0
	for _, r := range b.Rooms {
		for _, d := range r.Devices {
			n += d.Count
		}
	}
	return n
}
