package entity

import "time"

// PermitDeviceCounts is the device section of an electrical permit application.
type PermitDeviceCounts struct {
	Receptacles      int `json:"receptacles"`
	GFCIReceptacles  int `json:"gfciReceptacles"`
	Circuits240V     int `json:"circuits240v"`
	Switches         int `json:"switches"`
	LightingFixtures int `json:"lightingFixtures"`
	SmokeDetectors   int `json:"smokeDetectors"`
	CODetectors      int `json:"coDetectors"`
	Fans             int `json:"fans"`
	Thermostats      int `json:"thermostats"`
	Doorbells        int `json:"doorbells"`
	Other            int `json:"other"`
}

// Total sums every device field.
func (c PermitDeviceCounts) Total() int {
	return c.Receptacles + c.GFCIReceptacles + c.Circuits240V + c.Switches + c.LightingFixtures +
		c.SmokeDetectors + c.CODetectors + c.Fans + c.Thermostats + c.Doorbells + c.Other
}

// ElectricalPermit is the data needed to file an electrical permit for a blueprint.
type ElectricalPermit struct {
	ProjectID          string             `json:"projectId"`
	BlueprintID        string             `json:"blueprintId"`
	JobName            string             `json:"jobName"`
	JobAddress         string             `json:"jobAddress"`
	JobNumber          string             `json:"jobNumber"`
	ClassificationCode string             `json:"classificationCode"`
	SquareFootage      float64            `json:"squareFootage"`
	Floors             int                `json:"floors"`
	RoomCount          int                `json:"roomCount"`
	Devices            PermitDeviceCounts `json:"devices"`
	TotalDevices       int                `json:"totalDevices"`
	GeneratedAt        time.Time          `json:"generatedAt"`
}
