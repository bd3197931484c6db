package domain

import (
	"time"
)

// ConstraintKind is the time constraint type understood by the routing backend.
type ConstraintKind int

const (
	ConstraintNone         ConstraintKind = 0
	ConstraintArriveBefore ConstraintKind = 1
	ConstraintDepartAfter  ConstraintKind = 2
)

// Constraint pins a step to a point in time.
type Constraint struct {
	Kind     ConstraintKind `json:"type"`
	DateTime string         `json:"date_time"` // e.g. 2012-05-04T08:30:00
}

// RouteStep is one leg target of a multi-step itinerary request.
type RouteStep struct {
	Destination                 Coordinate `json:"destination"`
	Constraint                  Constraint `json:"constraint"`
	PrivateVehicleAtDestination bool       `json:"private_vehicle_at_destination"`
}

// TransportType is a transport mode advertised by the backend. ID is a bit flag.
type TransportType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Network is a public transport network advertised by the backend.
type Network struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Constants are the transport types and networks loaded once per session.
type Constants struct {
	TransportTypes []TransportType `json:"transport_types"`
	Networks       []Network       `json:"networks"`
}

// CostType identifies the quantity carried by a CostRecord.
type CostType int

const (
	CostDistance        CostType = 1
	CostDuration        CostType = 2
	CostPrice           CostType = 3
	CostCarbon          CostType = 4
	CostCalories        CostType = 5
	CostNumberOfChanges CostType = 6
	CostVariability     CostType = 7
)

// CostRecord is a raw cost attached to a roadmap step.
type CostRecord struct {
	Type  CostType `json:"type"`
	Value float64  `json:"value"`
}

// Movement codes reported at the end of a road step.
const (
	MovementNone         = 0
	MovementTurnLeft     = 1
	MovementTurnRight    = 2
	MovementRoundaboutLo = 4
	MovementRoundaboutHi = 999 // exclusive
)

// RoadmapStep is either a RoadStep or a PublicTransportStep. The unexported
// method keeps other packages from adding step kinds.
type RoadmapStep interface {
	StepKind() string
	StepCosts() []CostRecord
	roadmapStep()
}

// RoadStep is a step travelled on the road network.
type RoadStep struct {
	RoadName string       `json:"road_name"`
	Movement int          `json:"movement"`
	Costs    []CostRecord `json:"costs,omitempty"`
}

func (RoadStep) StepKind() string { return "road_step" }
func (s RoadStep) StepCosts() []CostRecord { return s.Costs }
func (RoadStep) roadmapStep() {}

// PublicTransportStep is a step travelled on a public transport trip.
type PublicTransportStep struct {
	Network   string       `json:"network"`
	Departure string       `json:"departure"`
	Arrival   string       `json:"arrival"`
	Trip      string       `json:"trip"`
	Costs     []CostRecord `json:"costs,omitempty"`
}

func (PublicTransportStep) StepKind() string { return "public_transport_step" }
func (s PublicTransportStep) StepCosts() []CostRecord { return s.Costs }
func (PublicTransportStep) roadmapStep() {}

// Icons emitted on roadmap rows for road steps.
const (
	IconTurnLeft   = "turn_left"
	IconTurnRight  = "turn_right"
	IconRoundabout = "roundabout"
)

// RoadmapRow is the display triple for one roadmap step.
type RoadmapRow struct {
	Kind        string `json:"kind"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description"`
	Costs       string `json:"costs"`
}

// Metric is a named value reported by the backend after a computation.
type Metric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RoutingResult is the decoded outcome of a route computation.
type RoutingResult struct {
	OverviewPath []Coordinate  `json:"overview_path"`
	Steps        []RoadmapStep `json:"-"`
	Roadmap      []RoadmapRow  `json:"roadmap"`
	Metrics      []Metric      `json:"metrics"`
}

// BackendState is the lifecycle state of the routing backend.
type BackendState int

const (
	StateUnknown       BackendState = -1
	StateStarted       BackendState = 0
	StateConnected     BackendState = 1
	StateGraphPrebuilt BackendState = 2
	StateGraphBuilt    BackendState = 3
)

func (s BackendState) String() string {
	switch s {
	case StateStarted:
		return "Started"
	case StateConnected:
		return "Connected"
	case StateGraphPrebuilt:
		return "Graph pre-built"
	case StateGraphBuilt:
		return "Graph built"
	default:
		return "Unknown"
	}
}

// ServerStatus is what the backend reports through its `state` service.
type ServerStatus struct {
	State        BackendState `json:"state"`
	StateText    string       `json:"state_text"`
	DBOptions    string       `json:"db_options,omitempty"`
	CanConfigure bool         `json:"can_configure"`
	CanQuery     bool         `json:"can_query"`
}

// NewServerStatus derives the capability flags from a raw state.
func NewServerStatus(state BackendState, dbOptions string) ServerStatus {
	return ServerStatus{
		State:        state,
		StateText:    state.String(),
		DBOptions:    dbOptions,
		CanConfigure: state >= StateConnected,
		CanQuery:     state >= StateGraphBuilt,
	}
}

// OptionType is the value type of a plugin option.
type OptionType int

const (
	OptionBool   OptionType = 0
	OptionInt    OptionType = 1
	OptionFloat  OptionType = 2
	OptionString OptionType = 3
)

// PluginOption describes one tunable of a routing plugin with its current value.
type PluginOption struct {
	Name        string     `json:"name"`
	Type        OptionType `json:"type"`
	Description string     `json:"description,omitempty"`
	Value       string     `json:"value"`
}

// ItineraryQuery is the UI-level input of a route computation. Steps are the
// successive destinations; empty TransportTypes or Networks select all of them.
type ItineraryQuery struct {
	Plugin              string      `json:"plugin"`
	Origin              Coordinate  `json:"origin"`
	DepartureConstraint Constraint  `json:"departure_constraint"`
	Steps               []RouteStep `json:"steps"`
	Criteria            []int       `json:"criteria"`
	Parking             *Coordinate `json:"parking,omitempty"`
	TransportTypes      []int       `json:"transport_types,omitempty"`
	Networks            []int64     `json:"networks,omitempty"`
}

// Itinerary is a computed and stored route.
type Itinerary struct {
	ID        string         `json:"id"`
	Plugin    string         `json:"plugin"`
	Query     ItineraryQuery `json:"query"`
	Result    RoutingResult  `json:"result"`
	Length    float64        `json:"length"`
	Extent    *Bounds        `json:"extent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// GraphBuiltEvent is published once the backend graph has been rebuilt.
type GraphBuiltEvent struct {
	State     BackendState `json:"state"`
	DBOptions string       `json:"db_options"`
	BuiltAt   time.Time    `json:"built_at"`
}

// ItineraryComputedEvent is published after each successful computation.
type ItineraryComputedEvent struct {
	ID        string    `json:"id"`
	Plugin    string    `json:"plugin"`
	Steps     int       `json:"steps"`
	Length    float64   `json:"length"`
	CreatedAt time.Time `json:"created_at"`
}
