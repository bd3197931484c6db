package roadmap_test

import (
	"testing"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/roadmap"
)

func departAt(ts string) domain.Constraint {
	return domain.Constraint{Kind: domain.ConstraintDepartAfter, DateTime: ts}
}

func tags(n roadmap.Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Tag)
	}
	return out
}

func TestBuildRequest_SingleStepEmitsNoStepBlocks(t *testing.T) {
	steps := []domain.RouteStep{{Constraint: departAt("2012-05-04T08:30:00")}}

	doc := roadmap.BuildRequest(domain.Coordinate{X: 1, Y: 2}, steps, []int{1}, nil, nil, nil)
	if len(doc.Steps) != 0 {
		t.Fatalf("expected 0 steps, got %d", len(doc.Steps))
	}
	if doc.DepartureConstraint != steps[0].Constraint {
		t.Errorf("expected departure constraint %+v, got %+v", steps[0].Constraint, doc.DepartureConstraint)
	}
	if got := doc.Node().ChildrenByTag("step"); len(got) != 0 {
		t.Errorf("expected no step blocks, got %d", len(got))
	}
}

func TestBuildRequest_StepBlocksReferenceFollowingSteps(t *testing.T) {
	steps := []domain.RouteStep{
		{Constraint: departAt("2012-05-04T08:30:00")},
		{Destination: domain.Coordinate{X: 10, Y: 20}, Constraint: departAt("2012-05-04T09:00:00"), PrivateVehicleAtDestination: true},
		{Destination: domain.Coordinate{X: 30.5, Y: 40}, Constraint: domain.Constraint{Kind: domain.ConstraintArriveBefore, DateTime: "2012-05-04T10:00:00"}},
	}

	doc := roadmap.BuildRequest(domain.Coordinate{}, steps, nil, nil, nil, nil)
	blocks := doc.Node().ChildrenByTag("step")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 step blocks, got %d", len(blocks))
	}

	dest, _ := blocks[1].Child("destination")
	if dest.Children[0].Text != "30.5" || dest.Children[1].Text != "40" {
		t.Errorf("unexpected destination %+v", dest)
	}
	c, _ := blocks[1].Child("constraint")
	if v, _ := c.Attr("type"); v != "1" {
		t.Errorf("expected constraint type 1, got %s", v)
	}
	if v, _ := c.Attr("date_time"); v != "2012-05-04T10:00:00" {
		t.Errorf("unexpected date_time %s", v)
	}

	pv0, _ := blocks[0].Child("private_vehicule_at_destination")
	pv1, _ := blocks[1].Child("private_vehicule_at_destination")
	if pv0.Text != "true" || pv1.Text != "false" {
		t.Errorf("expected true/false, got %s/%s", pv0.Text, pv1.Text)
	}
}

func TestBuildRequest_TransportTypesAreOred(t *testing.T) {
	types := []domain.TransportType{{ID: 1, Name: "Walking"}, {ID: 2, Name: "Bicycle"}}
	doc := roadmap.BuildRequest(domain.Coordinate{}, []domain.RouteStep{{}}, nil, nil, types, nil)
	if doc.AllowedTransportTypes != 3 {
		t.Errorf("expected 3, got %d", doc.AllowedTransportTypes)
	}

	dup := []domain.TransportType{{ID: 4}, {ID: 4}, {ID: 1}}
	doc = roadmap.BuildRequest(domain.Coordinate{}, []domain.RouteStep{{}}, nil, nil, dup, nil)
	if doc.AllowedTransportTypes != 5 {
		t.Errorf("expected duplicate flags to OR to 5, got %d", doc.AllowedTransportTypes)
	}
}

func TestRequestDocument_FieldOrder(t *testing.T) {
	parking := domain.Coordinate{X: 5, Y: 6}
	steps := []domain.RouteStep{
		{Constraint: departAt("2012-05-04T08:30:00")},
		{Destination: domain.Coordinate{X: 7, Y: 8}},
	}
	doc := roadmap.BuildRequest(
		domain.Coordinate{X: 356000, Y: 6690000},
		steps,
		[]int{2, 1, 2},
		&parking,
		[]domain.TransportType{{ID: 1}},
		[]domain.Network{{ID: 11}, {ID: 12}},
	)

	root := doc.Node()
	if root.Tag != "request" {
		t.Fatalf("expected request root, got %s", root.Tag)
	}
	want := []string{
		"origin", "departure_constraint", "parking_location",
		"optimizing_criterion", "optimizing_criterion", "optimizing_criterion",
		"allowed_transport_types", "allowed_network", "allowed_network", "step",
	}
	got := tags(root)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: expected %s, got %s (%v)", i, want[i], got[i], got)
		}
	}

	criteria := root.ChildrenByTag("optimizing_criterion")
	if criteria[0].Text != "2" || criteria[1].Text != "1" || criteria[2].Text != "2" {
		t.Errorf("criteria order not preserved: %+v", criteria)
	}
	origin, _ := root.Child("origin")
	if origin.Children[0].Text != "356000" || origin.Children[1].Text != "6690000" {
		t.Errorf("unexpected origin %+v", origin)
	}
}

func TestBuildRequest_EmptySelectionsPassThrough(t *testing.T) {
	doc := roadmap.BuildRequest(domain.Coordinate{}, []domain.RouteStep{{}}, nil, nil, nil, nil)
	root := doc.Node()
	if n := len(root.ChildrenByTag("optimizing_criterion")); n != 0 {
		t.Errorf("expected no criteria, got %d", n)
	}
	if _, ok := root.Child("parking_location"); ok {
		t.Error("expected no parking_location")
	}
	att, _ := root.Child("allowed_transport_types")
	if att.Text != "0" {
		t.Errorf("expected 0 allowed transport types, got %s", att.Text)
	}
}
