// Package permit derives electrical permit data from an extracted blueprint.
package permit

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// Field is a device line on the permit application.
type Field int

const (
	FieldOther Field = iota
	FieldReceptacles
	FieldGFCIReceptacles
	FieldCircuits240V
	FieldSwitches
	FieldLightingFixtures
	FieldSmokeDetectors
	FieldCODetectors
	FieldFans
	FieldThermostats
	FieldDoorbells
)

// FieldFor returns the permit line a device type is reported under.
func FieldFor(t constants.DeviceType) Field {
	switch t {
	case constants.DeviceReceptacle, constants.DeviceUSBReceptacle:
		return FieldReceptacles
	case constants.DeviceGFCIReceptacle:
		return FieldGFCIReceptacles
	case constants.Device240VReceptacle:
		return FieldCircuits240V
	case constants.DeviceSwitch, constants.DeviceThreeWaySwitch, constants.DeviceDimmer:
		return FieldSwitches
	case constants.DeviceCeilingLight, constants.DeviceRecessedLight, constants.DevicePendantLight, constants.DeviceUnderCabinetLight:
		return FieldLightingFixtures
	case constants.DeviceSmokeDetector:
		return FieldSmokeDetectors
	case constants.DeviceCODetector:
		return FieldCODetectors
	case constants.DeviceExhaustFan, constants.DeviceCeilingFan:
		return FieldFans
	case constants.DeviceThermostat:
		return FieldThermostats
	case constants.DeviceDoorbell:
		return FieldDoorbells
	default:
		return FieldOther
	}
}

// counts accumulates device quantities per permit field.
type counts struct {
	entity.PermitDeviceCounts
}

func (c *counts) add(f Field, n int) {
	switch f {
	case FieldReceptacles:
		c.Receptacles += n
	case FieldGFCIReceptacles:
		c.GFCIReceptacles += n
	case FieldCircuits240V:
		c.Circuits240V += n
	case FieldSwitches:
		c.Switches += n
	case FieldLightingFixtures:
		c.LightingFixtures += n
	case FieldSmokeDetectors:
		c.SmokeDetectors += n
	case FieldCODetectors:
		c.CODetectors += n
	case FieldFans:
		c.Fans += n
	case FieldThermostats:
		c.Thermostats += n
	case FieldDoorbells:
		c.Doorbells += n
	default:
		c.Other += n
	}
}

// Derive builds the permit data for bp.
func Derive(bp *entity.Blueprint, at time.Time) entity.ElectricalPermit {
	var c counts
	for _, room := range bp.Rooms {
		for _, d := range room.Devices {
			c.add(FieldFor(d.Type), d.Count)
		}
	}
	return entity.ElectricalPermit{
		ProjectID:          bp.ProjectID,
		BlueprintID:        bp.BlueprintID,
		JobName:            bp.JobName,
		JobAddress:         bp.JobAddress,
		JobNumber:          bp.JobNumber,
		ClassificationCode: bp.ClassificationCode,
		SquareFootage:      bp.SquareFootage,
		Floors:             bp.Floors,
		RoomCount:          len(bp.Rooms),
		Devices:            c.PermitDeviceCounts,
		TotalDevices:       c.Total(),
		GeneratedAt:        at,
	}
}

type BlueprintReader interface {
	Get(ctx context.Context, projectID, blueprintID string) (*entity.Blueprint, error)
}

type Service struct {
	blueprints BlueprintReader
	log        *slog.Logger
	now        func() time.Time
}

func NewService(blueprints BlueprintReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{blueprints: blueprints, log: logger, now: func() time.Time { return time.Now().UTC() }}
}

// DerivePermit loads a completed blueprint and returns its permit data.
func (s *Service) DerivePermit(ctx context.Context, projectID, blueprintID string) (*entity.ElectricalPermit, error) {
	bp, err := s.blueprints.Get(ctx, projectID, blueprintID)
	if err != nil {
		return nil, err
	}
	if bp.Status != constants.BlueprintStatusCompleted {
		return nil, common.Validationf("blueprint %s is %s; permits need a completed extraction", blueprintID, bp.Status)
	}
	p := Derive(bp, s.now())
	s.log.Info("permit.derive.ok", "project_id", projectID, "blueprint_id", blueprintID, "devices", p.TotalDevices)
	return &p, nil
}
