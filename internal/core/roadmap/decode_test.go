package roadmap_test

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/roadmap"
)

// ---- Fixture builders ----

func cost(code, value string) roadmap.Node {
	return roadmap.Node{Tag: "cost", Attrs: []roadmap.Attr{{Name: "type", Value: code}, {Name: "value", Value: value}}}
}

func roadStep(name string, movement int, costs ...roadmap.Node) roadmap.Node {
	children := []roadmap.Node{
		roadmap.Leaf("road", name),
		roadmap.Leaf("end_movement", strconv.Itoa(movement)),
	}
	return roadmap.Node{Tag: "road_step", Children: append(children, costs...)}
}

func ptStep(network, dep, arr, trip string, costs ...roadmap.Node) roadmap.Node {
	children := []roadmap.Node{
		roadmap.Leaf("network", network),
		roadmap.Leaf("departure_stop", dep),
		roadmap.Leaf("arrival_stop", arr),
		roadmap.Leaf("trip", trip),
	}
	return roadmap.Node{Tag: "public_transport_step", Children: append(children, costs...)}
}

func overview(points ...[2]string) roadmap.Node {
	n := roadmap.Node{Tag: "overview_path"}
	for _, p := range points {
		n.Children = append(n.Children, roadmap.Node{Tag: "node", Children: []roadmap.Node{
			roadmap.Leaf("x", p[0]),
			roadmap.Leaf("y", p[1]),
		}})
	}
	return n
}

// ---- Tests ----

func TestDecode_SplitsOverviewPathFromSteps(t *testing.T) {
	doc := roadmap.ResultDocument{
		roadStep("Rue de la Paix", 0, cost("1", "166.56")),
		ptStep("Tisseo", "Capitole", "Jean Jaures", "A12", cost("2", "300")),
		roadStep("Allee Jean Jaures", 2),
		overview([2]string{"1.5", "2.5"}, [2]string{"3", "4"}, [2]string{"5", "6"}),
	}

	res, err := roadmap.Decode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPath := []domain.Coordinate{{X: 1.5, Y: 2.5}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	if len(res.OverviewPath) != len(wantPath) {
		t.Fatalf("expected %d points, got %d", len(wantPath), len(res.OverviewPath))
	}
	for i := range wantPath {
		if res.OverviewPath[i] != wantPath[i] {
			t.Errorf("point %d: expected %+v, got %+v", i, wantPath[i], res.OverviewPath[i])
		}
	}

	if len(res.Roadmap) != 3 || len(res.Steps) != 3 {
		t.Fatalf("expected 3 rows and steps, got %d/%d", len(res.Roadmap), len(res.Steps))
	}
	if res.Roadmap[0].Description != "Walk on Rue de la Paix" {
		t.Errorf("unexpected row 0: %+v", res.Roadmap[0])
	}
	if res.Roadmap[0].Costs != "Distance: 166.6 m" {
		t.Errorf("unexpected costs: %q", res.Roadmap[0].Costs)
	}
	if res.Roadmap[1].Icon != "Tisseo" {
		t.Errorf("expected network as icon, got %q", res.Roadmap[1].Icon)
	}
	if res.Roadmap[1].Description != "Take the trip A12 from 'Capitole' to 'Jean Jaures'" {
		t.Errorf("unexpected row 1: %q", res.Roadmap[1].Description)
	}
	if res.Roadmap[2].Kind != "road_step" {
		t.Errorf("expected road_step kind, got %s", res.Roadmap[2].Kind)
	}
}

func TestDecode_ActionDependsOnPreviousMovement(t *testing.T) {
	doc := roadmap.ResultDocument{
		roadStep("A", 1),   // first step: always Walk on, no icon
		roadStep("B", 2),   // previous = 1 -> left
		roadStep("C", 5),   // previous = 2 -> right
		roadStep("D", 999), // previous = 5 -> roundabout
		roadStep("E", 3),   // previous = 999 -> walk
		roadStep("F", 4),   // previous = 3 -> walk
		roadStep("G", 998), // previous = 4 -> roundabout
		roadStep("H", 0),   // previous = 998 -> roundabout
		roadStep("I", 0),   // previous = 0 -> walk
		overview(),
	}

	res, err := roadmap.Decode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct{ icon, desc string }{
		{"", "Walk on A"},
		{domain.IconTurnLeft, "Turn left on B"},
		{domain.IconTurnRight, "Turn right on C"},
		{domain.IconRoundabout, "Walk on D"},
		{"", "Walk on E"},
		{"", "Walk on F"},
		{domain.IconRoundabout, "Walk on G"},
		{domain.IconRoundabout, "Walk on H"},
		{"", "Walk on I"},
	}
	if len(res.Roadmap) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(res.Roadmap))
	}
	for i, w := range want {
		if res.Roadmap[i].Icon != w.icon || res.Roadmap[i].Description != w.desc {
			t.Errorf("row %d: expected (%q, %q), got (%q, %q)", i, w.icon, w.desc, res.Roadmap[i].Icon, res.Roadmap[i].Description)
		}
	}
}

// lookalikeStep has the exported methods of a roadmap step but is not one.
type lookalikeStep struct{}

func (lookalikeStep) StepKind() string               { return "bike_step" }
func (lookalikeStep) StepCosts() []domain.CostRecord { return nil }

func TestRoadmapStep_IsSealed(t *testing.T) {
	iface := reflect.TypeOf((*domain.RoadmapStep)(nil)).Elem()

	if reflect.TypeOf(lookalikeStep{}).Implements(iface) {
		t.Fatal("expected a foreign type not to satisfy RoadmapStep")
	}
	for _, s := range []interface{}{domain.RoadStep{}, domain.PublicTransportStep{}} {
		if !reflect.TypeOf(s).Implements(iface) {
			t.Errorf("expected %T to satisfy RoadmapStep", s)
		}
	}
}

func TestDecode_PublicTransportKeepsLastMovement(t *testing.T) {
	doc := roadmap.ResultDocument{
		roadStep("A", 1),
		ptStep("Metro", "X", "Y", "T1"),
		roadStep("B", 0),
		overview(),
	}

	res, err := roadmap.Decode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Roadmap[2].Description != "Turn left on B" {
		t.Errorf("expected movement to carry over public transport step, got %q", res.Roadmap[2].Description)
	}
}

func TestDecode_EmptyRoadName(t *testing.T) {
	doc := roadmap.ResultDocument{roadStep("", 0), overview()}

	res, err := roadmap.Decode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Roadmap[0].Description != "Walk on " {
		t.Errorf("expected bare action text, got %q", res.Roadmap[0].Description)
	}
}

func TestDecode_UnknownCostTypeIsTolerated(t *testing.T) {
	doc := roadmap.ResultDocument{roadStep("A", 0, cost("42", "5")), overview()}

	res, err := roadmap.Decode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Roadmap[0].Costs != ": 5.0 " {
		t.Errorf("unexpected cost text %q", res.Roadmap[0].Costs)
	}
}

func TestDecode_UnknownStepKind(t *testing.T) {
	doc := roadmap.ResultDocument{
		roadStep("A", 0),
		{Tag: "ferry_step"},
		overview(),
	}

	res, err := roadmap.Decode(doc)
	if err == nil {
		t.Fatalf("expected error, got result %+v", res)
	}
	if !errors.Is(err, roadmap.ErrUnknownStepKind) {
		t.Fatalf("expected ErrUnknownStepKind, got %v", err)
	}
	var kindErr *roadmap.UnknownStepKindError
	if !errors.As(err, &kindErr) || kindErr.Index != 1 || kindErr.Kind != "ferry_step" {
		t.Errorf("unexpected error detail: %+v", kindErr)
	}
	if len(res.Roadmap) != 0 {
		t.Errorf("expected no rows on failure, got %d", len(res.Roadmap))
	}
}

func TestDecode_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		doc   roadmap.ResultDocument
		field string
		index int
	}{
		{"empty result", roadmap.ResultDocument{}, "overview_path", 0},
		{"road step without movement", roadmap.ResultDocument{
			{Tag: "road_step", Children: []roadmap.Node{roadmap.Leaf("road", "A")}}, overview(),
		}, "end_movement", 0},
		{"cost without value", roadmap.ResultDocument{
			roadStep("A", 0), roadStep("B", 0, roadmap.Node{Tag: "cost", Attrs: []roadmap.Attr{{Name: "type", Value: "1"}}}), overview(),
		}, "cost.value", 1},
		{"cost without type", roadmap.ResultDocument{
			roadStep("A", 0, roadmap.Node{Tag: "cost", Attrs: []roadmap.Attr{{Name: "value", Value: "1"}}}), overview(),
		}, "cost.type", 0},
		{"public transport without trip", roadmap.ResultDocument{
			{Tag: "public_transport_step", Children: []roadmap.Node{
				roadmap.Leaf("network", "N"), roadmap.Leaf("departure_stop", "D"), roadmap.Leaf("arrival_stop", "A"),
			}}, overview(),
		}, "trip", 0},
		{"overview node without y", roadmap.ResultDocument{
			roadStep("A", 0),
			{Tag: "overview_path", Children: []roadmap.Node{{Tag: "node", Children: []roadmap.Node{roadmap.Leaf("x", "1")}}}},
		}, "y", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := roadmap.Decode(tt.doc)
			if !errors.Is(err, roadmap.ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
			var mf *roadmap.MissingFieldError
			if !errors.As(err, &mf) {
				t.Fatalf("expected *MissingFieldError, got %T", err)
			}
			if mf.Field != tt.field || mf.Index != tt.index {
				t.Errorf("expected %s at %d, got %s at %d", tt.field, tt.index, mf.Field, mf.Index)
			}
		})
	}
}

func TestDecode_InvalidMovement(t *testing.T) {
	doc := roadmap.ResultDocument{
		{Tag: "road_step", Children: []roadmap.Node{roadmap.Leaf("road", "A"), roadmap.Leaf("end_movement", "left")}},
		overview(),
	}

	_, err := roadmap.Decode(doc)
	if !errors.Is(err, roadmap.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("expected wrapped strconv error, got %v", err)
	}
}

func TestDecodeMetrics_PassThrough(t *testing.T) {
	in := []domain.Metric{{Name: "Distance", Value: "167km"}, {Name: "Iterations", Value: "42"}}

	out := roadmap.DecodeMetrics(in)
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("expected %+v, got %+v", in, out)
	}

	out[0].Value = "changed"
	if in[0].Value != "167km" {
		t.Error("expected DecodeMetrics to copy its input")
	}
}
