package roadmap

import (
	"fmt"
	"strconv"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

const (
	tagRoadStep            = "road_step"
	tagPublicTransportStep = "public_transport_step"
	tagCost                = "cost"
)

// movementState carries the end movement of the previous road step.
type movementState struct {
	lastMovement int
}

// Decode turns a raw result document into a routing result. The last element
// is the overview path; everything before it is a roadmap step.
func Decode(doc ResultDocument) (domain.RoutingResult, error) {
	overview, steps, err := split(doc)
	if err != nil {
		return domain.RoutingResult{}, err
	}

	path, err := decodeOverviewPath(overview, len(doc)-1)
	if err != nil {
		return domain.RoutingResult{}, err
	}

	parsed := make([]domain.RoadmapStep, 0, len(steps))
	for i, n := range steps {
		step, err := parseStep(i, n)
		if err != nil {
			return domain.RoutingResult{}, err
		}
		parsed = append(parsed, step)
	}

	return domain.RoutingResult{
		OverviewPath: path,
		Steps:        parsed,
		Roadmap:      Describe(parsed),
	}, nil
}

// Describe renders the display rows of a step sequence in order.
func Describe(steps []domain.RoadmapStep) []domain.RoadmapRow {
	rows := make([]domain.RoadmapRow, 0, len(steps))
	var state movementState
	for _, s := range steps {
		var row domain.RoadmapRow
		row, state = describeStep(state, s)
		rows = append(rows, row)
	}
	return rows
}

// DecodeMetrics passes metrics through unchanged, in source order.
func DecodeMetrics(metrics []domain.Metric) []domain.Metric {
	out := make([]domain.Metric, len(metrics))
	copy(out, metrics)
	return out
}

func split(doc ResultDocument) (Node, []Node, error) {
	if len(doc) == 0 {
		return Node{}, nil, &MissingFieldError{Index: 0, Field: "overview_path"}
	}
	last := len(doc) - 1
	return doc[last], doc[:last], nil
}

func describeStep(state movementState, step domain.RoadmapStep) (domain.RoadmapRow, movementState) {
	switch s := step.(type) {
	case domain.RoadStep:
		icon, action := "", "Walk on "
		switch m := state.lastMovement; {
		case m == domain.MovementTurnLeft:
			icon, action = domain.IconTurnLeft, "Turn left on "
		case m == domain.MovementTurnRight:
			icon, action = domain.IconTurnRight, "Turn right on "
		case m >= domain.MovementRoundaboutLo && m < domain.MovementRoundaboutHi:
			icon = domain.IconRoundabout
		}
		return domain.RoadmapRow{
			Kind:        s.StepKind(),
			Icon:        icon,
			Description: action + s.RoadName,
			Costs:       FormatCosts(s.Costs),
		}, movementState{lastMovement: s.Movement}

	case domain.PublicTransportStep:
		return domain.RoadmapRow{
			Kind:        s.StepKind(),
			Icon:        s.Network,
			Description: fmt.Sprintf("Take the trip %s from '%s' to '%s'", s.Trip, s.Departure, s.Arrival),
			Costs:       FormatCosts(s.Costs),
		}, state
	}
	// RoadmapStep is sealed; only a nil step gets here.
	panic(fmt.Sprintf("roadmap: unsupported step %T", step))
}

func parseStep(index int, n Node) (domain.RoadmapStep, error) {
	switch n.Tag {
	case tagRoadStep:
		return parseRoadStep(index, n)
	case tagPublicTransportStep:
		return parsePublicTransportStep(index, n)
	default:
		return nil, &UnknownStepKindError{Index: index, Kind: n.Tag}
	}
}

// road_step children: road name, end movement, then costs.
func parseRoadStep(index int, n Node) (domain.RoadmapStep, error) {
	if len(n.Children) < 1 {
		return nil, &MissingFieldError{Index: index, Field: "road"}
	}
	if len(n.Children) < 2 {
		return nil, &MissingFieldError{Index: index, Field: "end_movement"}
	}
	movement, err := strconv.Atoi(n.Children[1].Text)
	if err != nil {
		return nil, &FieldFormatError{Index: index, Field: "end_movement", Err: err}
	}
	costs, err := parseCosts(index, n.Children[2:])
	if err != nil {
		return nil, err
	}
	return domain.RoadStep{
		RoadName: n.Children[0].Text,
		Movement: movement,
		Costs:    costs,
	}, nil
}

var publicTransportFields = []string{"network", "departure_stop", "arrival_stop", "trip"}

// public_transport_step children: network, departure, arrival, trip, then costs.
func parsePublicTransportStep(index int, n Node) (domain.RoadmapStep, error) {
	if len(n.Children) < len(publicTransportFields) {
		return nil, &MissingFieldError{Index: index, Field: publicTransportFields[len(n.Children)]}
	}
	costs, err := parseCosts(index, n.Children[len(publicTransportFields):])
	if err != nil {
		return nil, err
	}
	return domain.PublicTransportStep{
		Network:   n.Children[0].Text,
		Departure: n.Children[1].Text,
		Arrival:   n.Children[2].Text,
		Trip:      n.Children[3].Text,
		Costs:     costs,
	}, nil
}

func parseCosts(index int, nodes []Node) ([]domain.CostRecord, error) {
	costs := make([]domain.CostRecord, 0, len(nodes))
	for _, c := range nodes {
		rawType, ok := c.Attr("type")
		if !ok {
			return nil, &MissingFieldError{Index: index, Field: "cost.type"}
		}
		rawValue, ok := c.Attr("value")
		if !ok {
			return nil, &MissingFieldError{Index: index, Field: "cost.value"}
		}
		code, err := strconv.Atoi(rawType)
		if err != nil {
			return nil, &FieldFormatError{Index: index, Field: "cost.type", Err: err}
		}
		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, &FieldFormatError{Index: index, Field: "cost.value", Err: err}
		}
		costs = append(costs, domain.CostRecord{Type: domain.CostType(code), Value: value})
	}
	return costs, nil
}

// overview_path children are nodes holding x then y.
func decodeOverviewPath(n Node, index int) ([]domain.Coordinate, error) {
	path := make([]domain.Coordinate, 0, len(n.Children))
	for _, node := range n.Children {
		if len(node.Children) < 1 {
			return nil, &MissingFieldError{Index: index, Field: "x"}
		}
		if len(node.Children) < 2 {
			return nil, &MissingFieldError{Index: index, Field: "y"}
		}
		x, err := strconv.ParseFloat(node.Children[0].Text, 64)
		if err != nil {
			return nil, &FieldFormatError{Index: index, Field: "x", Err: err}
		}
		y, err := strconv.ParseFloat(node.Children[1].Text, 64)
		if err != nil {
			return nil, &FieldFormatError{Index: index, Field: "y", Err: err}
		}
		path = append(path, domain.Coordinate{X: x, Y: y})
	}
	return path, nil
}
