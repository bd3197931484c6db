package roadmap

import (
	"strconv"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

// RequestDocument is the itinerary request sent to the backend's pre_process service.
type RequestDocument struct {
	Origin                domain.Coordinate
	DepartureConstraint   domain.Constraint
	ParkingLocation       *domain.Coordinate
	OptimizingCriteria    []int
	AllowedTransportTypes int
	AllowedNetworks       []int64
	Steps                 []domain.RouteStep
}

// BuildRequest assembles a request from UI selections.
//
// steps[0] carries the departure constraint; every following step becomes a
// `step` block. Transport type ids are bit flags and are OR-ed together.
// Nothing is validated here.
func BuildRequest(
	origin domain.Coordinate,
	steps []domain.RouteStep,
	criteria []int,
	parking *domain.Coordinate,
	transportTypes []domain.TransportType,
	networks []domain.Network,
) RequestDocument {
	doc := RequestDocument{
		Origin:             origin,
		OptimizingCriteria: append([]int(nil), criteria...),
	}
	if len(steps) > 0 {
		doc.DepartureConstraint = steps[0].Constraint
		doc.Steps = append([]domain.RouteStep(nil), steps[1:]...)
	}
	if parking != nil {
		p := *parking
		doc.ParkingLocation = &p
	}
	for _, t := range transportTypes {
		doc.AllowedTransportTypes |= t.ID
	}
	for _, n := range networks {
		doc.AllowedNetworks = append(doc.AllowedNetworks, n.ID)
	}
	return doc
}

// Node serializes the document into the ordered `request` tree.
func (d RequestDocument) Node() Node {
	root := Node{Tag: "request"}
	root.Children = append(root.Children,
		coordinateNode("origin", d.Origin),
		constraintNode("departure_constraint", d.DepartureConstraint),
	)
	if d.ParkingLocation != nil {
		root.Children = append(root.Children, coordinateNode("parking_location", *d.ParkingLocation))
	}
	for _, c := range d.OptimizingCriteria {
		root.Children = append(root.Children, Leaf("optimizing_criterion", strconv.Itoa(c)))
	}
	root.Children = append(root.Children, Leaf("allowed_transport_types", strconv.Itoa(d.AllowedTransportTypes)))
	for _, n := range d.AllowedNetworks {
		root.Children = append(root.Children, Leaf("allowed_network", strconv.FormatInt(n, 10)))
	}
	for _, s := range d.Steps {
		root.Children = append(root.Children, Node{
			Tag: "step",
			Children: []Node{
				coordinateNode("destination", s.Destination),
				constraintNode("constraint", s.Constraint),
				Leaf("private_vehicule_at_destination", strconv.FormatBool(s.PrivateVehicleAtDestination)),
			},
		})
	}
	return root
}

func coordinateNode(tag string, c domain.Coordinate) Node {
	return Node{
		Tag: tag,
		Children: []Node{
			Leaf("x", formatFloat(c.X)),
			Leaf("y", formatFloat(c.Y)),
		},
	}
}

func constraintNode(tag string, c domain.Constraint) Node {
	return Node{
		Tag: tag,
		Attrs: []Attr{
			{Name: "type", Value: strconv.Itoa(int(c.Kind))},
			{Name: "date_time", Value: c.DateTime},
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
