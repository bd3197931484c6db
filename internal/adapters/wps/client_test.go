package wps_test

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/tempusgw/internal/adapters/wps"
	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/roadmap"
)

// ---- Fake backend ----

// executeRequest is the subset of an Execute document the fake backend reads.
type executeRequest struct {
	Identifier string `xml:"Identifier"`
	Inputs     []struct {
		Identifier string `xml:"Identifier"`
		Data       struct {
			Inner []byte `xml:",innerxml"`
		} `xml:"Data>ComplexData"`
	} `xml:"DataInputs>Input"`
}

func executeResponse(process string, outputs map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<wps:ExecuteResponse xmlns:wps="http://www.opengis.net/wps/1.0.0" xmlns:ows="http://www.opengis.net/ows/1.1" service="WPS" version="1.0.0">
  <wps:Process wps:processVersion="1"><ows:Identifier>%s</ows:Identifier></wps:Process>
  <wps:Status><wps:ProcessSucceeded/></wps:Status>
  <wps:ProcessOutputs>`, process)
	for name, data := range outputs {
		fmt.Fprintf(&b, `
    <wps:Output>
      <ows:Identifier>%s</ows:Identifier>
      <ows:Title>%s</ows:Title>
      <wps:Data><wps:ComplexData>%s</wps:ComplexData></wps:Data>
    </wps:Output>`, name, name, data)
	}
	b.WriteString(`
  </wps:ProcessOutputs>
</wps:ExecuteResponse>`)
	return b.String()
}

const exceptionReport = `<?xml version="1.0" encoding="UTF-8"?>
<ows:ExceptionReport xmlns:ows="http://www.opengis.net/ows/1.1" version="1.0.0">
  <ows:Exception exceptionCode="NoApplicableCode">
    <ows:ExceptionText>Cannot find plugin bogus</ows:ExceptionText>
  </ows:Exception>
</ows:ExceptionReport>`

type fakeBackend struct {
	t       *testing.T
	status  int
	replies map[string]string // process -> full response body
	seen    []executeRequest
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req executeRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		f.t.Errorf("backend received invalid xml: %v\n%s", err, body)
	}
	f.seen = append(f.seen, req)

	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = io.WriteString(w, f.replies[req.Identifier])
}

func newBackend(t *testing.T, replies map[string]string) (*fakeBackend, *wps.Client) {
	t.Helper()
	fb := &fakeBackend{t: t, replies: replies}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return fb, wps.New(srv.URL, 5*time.Second)
}

// ---- Tests ----

func TestState(t *testing.T) {
	_, client := newBackend(t, map[string]string{
		"state": executeResponse("state", map[string]string{
			"state":      "<state>3</state>",
			"db_options": "<db_options>dbname=tempus_test_db</db_options>",
		}),
	})

	status, err := client.State(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != domain.StateGraphBuilt || status.StateText != "Graph built" {
		t.Errorf("unexpected state %+v", status)
	}
	if !status.CanConfigure || !status.CanQuery {
		t.Errorf("expected both capabilities at state 3, got %+v", status)
	}
	if status.DBOptions != "dbname=tempus_test_db" {
		t.Errorf("unexpected db options %q", status.DBOptions)
	}
}

func TestPlugins(t *testing.T) {
	_, client := newBackend(t, map[string]string{
		"plugin_list": executeResponse("plugin_list", map[string]string{
			"plugins": `<plugins><plugin name="sample_road_plugin"/><plugin name="sample_multi_plugin"/></plugins>`,
		}),
	})

	plugins, err := client.Plugins(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plugins) != 2 || plugins[0] != "sample_road_plugin" || plugins[1] != "sample_multi_plugin" {
		t.Errorf("unexpected plugins %v", plugins)
	}
}

func TestConstants(t *testing.T) {
	_, client := newBackend(t, map[string]string{
		"constant_list": executeResponse("constant_list", map[string]string{
			"transport_types":    `<transport_types><transport_type id="1" name="Car"/><transport_type id="4" name="Walking"/></transport_types>`,
			"transport_networks": `<transport_networks><network id="12" name="Tisseo"/></transport_networks>`,
		}),
	})

	consts, err := client.Constants(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(consts.TransportTypes) != 2 || consts.TransportTypes[1] != (domain.TransportType{ID: 4, Name: "Walking"}) {
		t.Errorf("unexpected transport types %+v", consts.TransportTypes)
	}
	if len(consts.Networks) != 1 || consts.Networks[0] != (domain.Network{ID: 12, Name: "Tisseo"}) {
		t.Errorf("unexpected networks %+v", consts.Networks)
	}
}

func TestPreProcess_SendsPluginAndRequest(t *testing.T) {
	fb, client := newBackend(t, map[string]string{
		"pre_process": executeResponse("pre_process", nil),
	})

	req := roadmap.BuildRequest(
		domain.Coordinate{X: 1, Y: 2},
		[]domain.RouteStep{
			{Constraint: domain.Constraint{Kind: domain.ConstraintDepartAfter, DateTime: "2012-03-14T11:05:00"}},
			{Destination: domain.Coordinate{X: 3, Y: 4}},
		},
		[]int{1}, nil, nil, nil,
	)
	if err := client.PreProcess(context.Background(), "sample_road_plugin", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fb.seen) != 1 {
		t.Fatalf("expected a single round-trip, got %d", len(fb.seen))
	}
	got := fb.seen[0]
	if got.Identifier != "pre_process" || len(got.Inputs) != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Inputs[0].Identifier != "plugin" || !strings.Contains(string(got.Inputs[0].Data.Inner), `name="sample_road_plugin"`) {
		t.Errorf("unexpected plugin input %s", got.Inputs[0].Data.Inner)
	}
	request := string(got.Inputs[1].Data.Inner)
	for _, want := range []string{
		"<origin><x>1</x><y>2</y></origin>",
		`<departure_constraint type="2" date_time="2012-03-14T11:05:00"></departure_constraint>`,
		"<private_vehicule_at_destination>false</private_vehicule_at_destination>",
	} {
		if !strings.Contains(request, want) {
			t.Errorf("expected %s in request, got %s", want, request)
		}
	}
}

func TestResult_ReturnsStepsInOrder(t *testing.T) {
	_, client := newBackend(t, map[string]string{
		"result": executeResponse("result", map[string]string{
			"result": `<result>
  <road_step><road>Rue A</road><end_movement>1</end_movement><cost type="1" value="120.5"/></road_step>
  <road_step><road>Rue B</road><end_movement>0</end_movement></road_step>
  <overview_path><node><x>1</x><y>2</y></node><node><x>3</x><y>4</y></node></overview_path>
</result>`,
		}),
	})

	doc, err := client.Result(context.Background(), "sample_road_plugin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(doc))
	}

	res, err := roadmap.Decode(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Roadmap[1].Description != "Turn left on Rue B" {
		t.Errorf("unexpected row %q", res.Roadmap[1].Description)
	}
	if res.Roadmap[0].Costs != "Distance: 120.5 m" {
		t.Errorf("unexpected costs %q", res.Roadmap[0].Costs)
	}
	if len(res.OverviewPath) != 2 || res.OverviewPath[1] != (domain.Coordinate{X: 3, Y: 4}) {
		t.Errorf("unexpected overview path %+v", res.OverviewPath)
	}
}

func TestMetrics(t *testing.T) {
	_, client := newBackend(t, map[string]string{
		"get_metrics": executeResponse("get_metrics", map[string]string{
			"metrics": `<metrics><metric name="iterations" value="42"/><metric name="time_s" value="0.3"/></metrics>`,
		}),
	})

	m, err := client.Metrics(context.Background(), "sample_road_plugin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Metric{{Name: "iterations", Value: "42"}, {Name: "time_s", Value: "0.3"}}
	if len(m) != 2 || m[0] != want[0] || m[1] != want[1] {
		t.Errorf("expected %+v, got %+v", want, m)
	}
}

func TestExecute_ExceptionReport(t *testing.T) {
	fb, client := newBackend(t, map[string]string{"process": exceptionReport})
	fb.status = http.StatusBadRequest

	err := client.Process(context.Background(), "bogus")
	var exc *wps.ExceptionError
	if !errors.As(err, &exc) {
		t.Fatalf("expected ExceptionError, got %v", err)
	}
	if exc.Code != "NoApplicableCode" || exc.Text != "Cannot find plugin bogus" {
		t.Errorf("unexpected exception %+v", exc)
	}
	if !errors.Is(err, wps.ErrBackend) {
		t.Error("expected exception to match ErrBackend")
	}
}

func TestExecute_StatusWithoutReport(t *testing.T) {
	fb, client := newBackend(t, map[string]string{"build": "Internal Server Error"})
	fb.status = http.StatusInternalServerError

	err := client.Build(context.Background())
	var se *wps.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected StatusError 500, got %v", err)
	}
}

func TestExecute_MissingOutput(t *testing.T) {
	_, client := newBackend(t, map[string]string{
		"plugin_list": executeResponse("plugin_list", nil),
	})

	_, err := client.Plugins(context.Background())
	var pe *wps.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestExecute_CancelledContext(t *testing.T) {
	fb, client := newBackend(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.PreBuild(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(fb.seen) != 0 {
		t.Errorf("expected no request, got %d", len(fb.seen))
	}
}
