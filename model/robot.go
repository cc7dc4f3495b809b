package model

import "time"

// ConnectionStatus mirrors the backend's wire values for robot connectivity.
type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "terhubung"
	ConnectionDisconnected ConnectionStatus = "terputus"
)

// OperationStatus is a closed set of robot operation states. Statuses the
// backend introduces after this build are carried through verbatim as
// StatusUnknown so displays stay truthful.
type OperationStatus struct {
	kind string
	raw  string
}

// Known operation statuses.
var (
	StatusStandby        = OperationStatus{kind: "Standby"}
	StatusModeManual     = OperationStatus{kind: "Mode Manual"}
	StatusModeOtomatis   = OperationStatus{kind: "Mode Otomatis"}
	StatusMaju           = OperationStatus{kind: "Maju"}
	StatusMundur         = OperationStatus{kind: "Mundur"}
	StatusKiri           = OperationStatus{kind: "Kiri"}
	StatusKanan          = OperationStatus{kind: "Kanan"}
	StatusTancapSensor   = OperationStatus{kind: "Tancap Sensor"}
	StatusPenaburanAktif = OperationStatus{kind: "Penaburan Aktif"}
	StatusBerhenti       = OperationStatus{kind: "Berhenti"}
	StatusReturnToBase   = OperationStatus{kind: "Return to Base"}
)

var knownStatuses = []OperationStatus{
	StatusStandby, StatusModeManual, StatusModeOtomatis,
	StatusMaju, StatusMundur, StatusKiri, StatusKanan,
	StatusTancapSensor, StatusPenaburanAktif, StatusBerhenti,
	StatusReturnToBase,
}

// ParseOperationStatus maps a backend status string onto the closed set,
// falling back to an unknown passthrough value. The empty string parses to
// Standby, matching the backend's resting default.
func ParseOperationStatus(s string) OperationStatus {
	if s == "" {
		return StatusStandby
	}
	for _, known := range knownStatuses {
		if known.kind == s {
			return known
		}
	}
	return OperationStatus{raw: s}
}

// String returns the wire representation of the status.
func (s OperationStatus) String() string {
	if s.kind != "" {
		return s.kind
	}
	return s.raw
}

// Known reports whether the status is one of the closed set.
func (s OperationStatus) Known() bool { return s.kind != "" }

// Directional reports whether the status is a transient movement state.
func (s OperationStatus) Directional() bool {
	switch s {
	case StatusMaju, StatusMundur, StatusKiri, StatusKanan:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (s OperationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *OperationStatus) UnmarshalText(b []byte) error {
	*s = ParseOperationStatus(string(b))
	return nil
}

// Mode is the robot's control mode.
type Mode string

const (
	ModeManual   Mode = "manual"
	ModeOtomatis Mode = "otomatis"
)

// OperationStatusFor returns the persistent status marker for a mode.
func OperationStatusFor(m Mode) OperationStatus {
	if m == ModeOtomatis {
		return StatusModeOtomatis
	}
	return StatusModeManual
}

// RobotState is the console's cached copy of the backend-owned robot state,
// refreshed by polling and updated after confirmed commands.
type RobotState struct {
	ConnectionStatus  ConnectionStatus `json:"connectionStatus"`
	OperationStatus   OperationStatus  `json:"operationStatus"`
	SeedsPlanted      int              `json:"benihTertanam"`
	BatteryPercent    int              `json:"baterai"`
	SelectedMappingID string           `json:"selectedMappingId,omitempty"`
}

// Connected reports whether the robot link is up.
func (r RobotState) Connected() bool {
	return r.ConnectionStatus == ConnectionConnected
}

// Coordinate is a GPS point on a mapping path.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Mapping is a saved GPS path the robot follows in automatic mode.
type Mapping struct {
	ID          string       `json:"id"`
	Name        string       `json:"mappingName"`
	Coordinates []Coordinate `json:"coordinates"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// closedPathTolerance is the advisory distance, in degrees, within which a
// path's endpoints are considered to close a loop.
const closedPathTolerance = 1e-4

// Closed reports whether the path's first and last coordinates are within
// the advisory tolerance of each other. This is informational only; open
// paths are accepted everywhere.
func (m Mapping) Closed() bool {
	if len(m.Coordinates) < 2 {
		return false
	}
	first, last := m.Coordinates[0], m.Coordinates[len(m.Coordinates)-1]
	dLat := first.Lat - last.Lat
	dLng := first.Lng - last.Lng
	if dLat < 0 {
		dLat = -dLat
	}
	if dLng < 0 {
		dLng = -dLng
	}
	return dLat <= closedPathTolerance && dLng <= closedPathTolerance
}

// HistoryEntry is one recorded probe of the soil sensors, appended when the
// robot executes Tancap Sensor.
type HistoryEntry struct {
	ID           string    `json:"id,omitempty"`
	Suhu         float64   `json:"suhu"`
	Kelembapan   float64   `json:"kelembapan"`
	PH           float64   `json:"ph"`
	Nitrogen     float64   `json:"nitrogen"`
	Phospor      float64   `json:"phospor"`
	Kalium       float64   `json:"kalium"`
	SeedsPlanted int       `json:"benihTertanam"`
	Battery      int       `json:"baterai"`
	Status       string    `json:"status"`
	GPSLatitude  *float64  `json:"gpsLatitude"`
	GPSLongitude *float64  `json:"gpsLongitude"`
	RecordedAt   time.Time `json:"recordedAt,omitempty"`
}

// History status verdicts.
const (
	VerdictSuitable   = "Layak"
	VerdictUnsuitable = "Tidak Layak"
)
