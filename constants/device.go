package constants

import "regexp"

type DeviceType string

const (
	DeviceReceptacle        DeviceType = "receptacle"
	DeviceGFCIReceptacle    DeviceType = "gfci-receptacle"
	DeviceUSBReceptacle     DeviceType = "usb-receptacle"
	Device240VReceptacle    DeviceType = "240v-receptacle"
	DeviceSwitch            DeviceType = "switch"
	DeviceThreeWaySwitch    DeviceType = "three-way-switch"
	DeviceDimmer            DeviceType = "dimmer"
	DeviceCeilingLight      DeviceType = "ceiling-light"
	DeviceRecessedLight     DeviceType = "recessed-light"
	DevicePendantLight      DeviceType = "pendant-light"
	DeviceUnderCabinetLight DeviceType = "under-cabinet-light"
	DeviceSmokeDetector     DeviceType = "smoke-detector"
	DeviceCODetector        DeviceType = "co-detector"
	DeviceThermostat        DeviceType = "thermostat"
	DeviceDoorbell          DeviceType = "doorbell"
	DeviceExhaustFan        DeviceType = "exhaust-fan"
	DeviceCeilingFan        DeviceType = "ceiling-fan"
	DeviceCustom            DeviceType = "custom"
)

// Assembly codes with special meaning to the estimation engine.
const (
	AssemblyMiscStandard = "MISC-STD" // fallback for unmapped or missing assemblies
	AssemblyServicePanel = "SVC-PNL"  // fixed service entrance/panel line
)

// deviceAssemblies maps every device type to exactly one catalog assembly.
var deviceAssemblies = map[DeviceType]string{
	DeviceReceptacle:        "REC-STD",
	DeviceGFCIReceptacle:    "REC-GFCI",
	DeviceUSBReceptacle:     "REC-USB",
	Device240VReceptacle:    "REC-240",
	DeviceSwitch:            "SW-SP",
	DeviceThreeWaySwitch:    "SW-3W",
	DeviceDimmer:            "SW-DIM",
	DeviceCeilingLight:      "LT-CEIL",
	DeviceRecessedLight:     "LT-REC",
	DevicePendantLight:      "LT-PEND",
	DeviceUnderCabinetLight: "LT-UC",
	DeviceSmokeDetector:     "DET-SMK",
	DeviceCODetector:        "DET-CO",
	DeviceThermostat:        "THERM-STD",
	DeviceDoorbell:          "BELL-STD",
	DeviceExhaustFan:        "FAN-EXH",
	DeviceCeilingFan:        "FAN-CEIL",
	DeviceCustom:            AssemblyMiscStandard,
}

// AssemblyCodeFor returns the assembly code for a device type. Unknown types
// fall back to MISC-STD.
func AssemblyCodeFor(t DeviceType) string {
	if code, ok := deviceAssemblies[t]; ok {
		return code
	}
	return AssemblyMiscStandard
}

// DeviceAllocation is one line of a room's standard device bundle.
type DeviceAllocation struct {
	Type  DeviceType
	Count int
}

var (
	bundleLiving = []DeviceAllocation{
		{Type: DeviceReceptacle, Count: 6},
		{Type: DeviceSwitch, Count: 2},
		{Type: DeviceCeilingLight, Count: 1},
	}
	bundleKitchen = []DeviceAllocation{
		{Type: DeviceGFCIReceptacle, Count: 4},
		{Type: DeviceSwitch, Count: 3},
		{Type: DeviceRecessedLight, Count: 4},
		{Type: DeviceUnderCabinetLight, Count: 2},
	}
	bundleBedroom = []DeviceAllocation{
		{Type: DeviceReceptacle, Count: 4},
		{Type: DeviceSwitch, Count: 1},
		{Type: DeviceCeilingLight, Count: 1},
	}
	bundleBathroom = []DeviceAllocation{
		{Type: DeviceGFCIReceptacle, Count: 2},
		{Type: DeviceSwitch, Count: 2},
		{Type: DeviceRecessedLight, Count: 2},
		{Type: DeviceExhaustFan, Count: 1},
	}
	bundleDefault = []DeviceAllocation{
		{Type: DeviceReceptacle, Count: 2},
		{Type: DeviceSwitch, Count: 1},
		{Type: DeviceCeilingLight, Count: 1},
	}
)

var roomBundles = map[RoomType][]DeviceAllocation{
	RoomLiving:         bundleLiving,
	RoomKitchen:        bundleKitchen,
	RoomBedroom:        bundleBedroom,
	RoomMasterBedroom:  bundleBedroom,
	RoomBathroom:       bundleBathroom,
	RoomMasterBathroom: bundleBathroom,
}

// DeviceBundleFor returns a copy of the standard device bundle for a room type.
func DeviceBundleFor(t RoomType) []DeviceAllocation {
	b, ok := roomBundles[t]
	if !ok {
		b = bundleDefault
	}
	out := make([]DeviceAllocation, len(b))
	copy(out, b)
	return out
}

// DevicePattern is a drawing-text pattern that names a device. The patterns
// are only used to report mentions; device counts come from DeviceBundleFor.
type DevicePattern struct {
	Type    DeviceType
	Pattern *regexp.Regexp
}

var DevicePatterns = []DevicePattern{
	{Type: DeviceGFCIReceptacle, Pattern: regexp.MustCompile(`(?i)\bgfci?\b`)},
	{Type: DeviceUSBReceptacle, Pattern: regexp.MustCompile(`(?i)\busb\s+(receptacle|outlet)`)},
	{Type: Device240VReceptacle, Pattern: regexp.MustCompile(`(?i)\b(240|220)\s*v\b`)},
	{Type: DeviceReceptacle, Pattern: regexp.MustCompile(`(?i)\b(duplex\s+)?(receptacle|outlet)s?\b`)},
	{Type: DeviceDimmer, Pattern: regexp.MustCompile(`(?i)\bdimmer`)},
	{Type: DeviceThreeWaySwitch, Pattern: regexp.MustCompile(`(?i)\b(3|three)[-\s]?way\b`)},
	{Type: DeviceSwitch, Pattern: regexp.MustCompile(`(?i)\bswitch(es)?\b`)},
	{Type: DeviceRecessedLight, Pattern: regexp.MustCompile(`(?i)\b(recessed|can)\s+light`)},
	{Type: DevicePendantLight, Pattern: regexp.MustCompile(`(?i)\bpendant`)},
	{Type: DeviceUnderCabinetLight, Pattern: regexp.MustCompile(`(?i)\bunder[-\s]?cabinet`)},
	{Type: DeviceCeilingLight, Pattern: regexp.MustCompile(`(?i)\bceiling\s+(light|fixture)`)},
	{Type: DeviceSmokeDetector, Pattern: regexp.MustCompile(`(?i)\bsmoke\s+(detector|alarm)`)},
	{Type: DeviceCODetector, Pattern: regexp.MustCompile(`(?i)\b(co|carbon\s+monoxide)\s+(detector|alarm)`)},
	{Type: DeviceThermostat, Pattern: regexp.MustCompile(`(?i)\bthermostat`)},
	{Type: DeviceDoorbell, Pattern: regexp.MustCompile(`(?i)\bdoor\s?bell`)},
	{Type: DeviceExhaustFan, Pattern: regexp.MustCompile(`(?i)\bexhaust\s+fan`)},
	{Type: DeviceCeilingFan, Pattern: regexp.MustCompile(`(?i)\bceiling\s+fan`)},
}

var allDeviceTypes = []DeviceType{
	DeviceReceptacle, DeviceGFCIReceptacle, DeviceUSBReceptacle, Device240VReceptacle,
	DeviceSwitch, DeviceThreeWaySwitch, DeviceDimmer,
	DeviceCeilingLight, DeviceRecessedLight, DevicePendantLight, DeviceUnderCabinetLight,
	DeviceSmokeDetector, DeviceCODetector, DeviceThermostat, DeviceDoorbell,
	DeviceExhaustFan, DeviceCeilingFan, DeviceCustom,
}

// DeviceTypesAsStrings lists the device vocabulary, used to constrain JSON
// schemas.
func DeviceTypesAsStrings() []string {
	out := make([]string, len(allDeviceTypes))
	for i, t := range allDeviceTypes {
		out[i] = string(t)
	}
	return out
}
