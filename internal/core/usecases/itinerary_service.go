package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
	"github.com/samirrijal/tempusgw/internal/core/roadmap"
	"github.com/samirrijal/tempusgw/internal/pkg/geospatial"
	"github.com/samirrijal/tempusgw/internal/pkg/metrics"
	"github.com/samirrijal/tempusgw/internal/pkg/telemetry"
)

// ItineraryService computes itineraries on the backend and keeps a history.
type ItineraryService struct {
	backend       ports.RoutingBackend
	session       *SessionService
	itineraries   ports.ItineraryRepository
	publisher     ports.EventPublisher
	defaultPlugin string
}

// NewItineraryService creates a new ItineraryService. itineraries and
// publisher may be nil.
func NewItineraryService(
	backend ports.RoutingBackend,
	session *SessionService,
	itineraries ports.ItineraryRepository,
	publisher ports.EventPublisher,
	defaultPlugin string,
) *ItineraryService {
	return &ItineraryService{
		backend:       backend,
		session:       session,
		itineraries:   itineraries,
		publisher:     publisher,
		defaultPlugin: defaultPlugin,
	}
}

// Compute runs pre_process, process and result for q, decodes the roadmap
// and fetches the plugin metrics.
func (s *ItineraryService) Compute(ctx context.Context, q domain.ItineraryQuery) (*domain.Itinerary, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanItineraryCompute)
	defer span.End()

	it, err := s.compute(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String(telemetry.AttrItineraryID, it.ID),
		attribute.Int(telemetry.AttrStepCount, len(it.Result.Roadmap)),
	)
	return it, nil
}

func (s *ItineraryService) compute(ctx context.Context, q domain.ItineraryQuery) (*domain.Itinerary, error) {
	if q.Plugin == "" {
		q.Plugin = s.defaultPlugin
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	consts, err := s.session.Constants(ctx)
	if err != nil {
		return nil, err
	}
	transportTypes, err := selectTransportTypes(consts.TransportTypes, q.TransportTypes)
	if err != nil {
		return nil, err
	}
	for _, t := range transportTypes {
		if t.ID <= 0 || t.ID&(t.ID-1) != 0 {
			slog.WarnContext(ctx, "transport type id is not a single bit flag", "id", t.ID, "name", t.Name)
		}
	}
	networks, err := selectNetworks(consts.Networks, q.Networks)
	if err != nil {
		return nil, err
	}

	// the first step only carries the departure constraint
	steps := make([]domain.RouteStep, 0, len(q.Steps)+1)
	steps = append(steps, domain.RouteStep{Destination: q.Origin, Constraint: q.DepartureConstraint})
	steps = append(steps, q.Steps...)
	req := roadmap.BuildRequest(q.Origin, steps, q.Criteria, q.Parking, transportTypes, networks)

	if err := s.backend.PreProcess(ctx, q.Plugin, req); err != nil {
		return nil, fmt.Errorf("pre_process: %w", err)
	}
	if err := s.backend.Process(ctx, q.Plugin); err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	doc, err := s.backend.Result(ctx, q.Plugin)
	if err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}

	result, err := roadmap.Decode(doc)
	if err != nil {
		metrics.RoadmapDecodeErrors.WithLabelValues(decodeErrorKind(err)).Inc()
		return nil, fmt.Errorf("decode result: %w", err)
	}

	raw, err := s.backend.Metrics(ctx, q.Plugin)
	if err != nil {
		return nil, fmt.Errorf("get_metrics: %w", err)
	}
	result.Metrics = roadmap.DecodeMetrics(raw)

	it := &domain.Itinerary{
		ID:        uuid.NewString(),
		Plugin:    q.Plugin,
		Query:     q,
		Result:    result,
		Length:    geospatial.Length(result.OverviewPath),
		Extent:    geospatial.Extent(result.OverviewPath),
		CreatedAt: time.Now().UTC(),
	}

	if s.itineraries != nil {
		if err := s.itineraries.Insert(ctx, it); err != nil {
			return nil, fmt.Errorf("insert itinerary: %w", err)
		}
	}
	metrics.ItinerariesComputed.WithLabelValues(q.Plugin).Inc()

	if s.publisher != nil {
		event := &domain.ItineraryComputedEvent{
			ID:        it.ID,
			Plugin:    it.Plugin,
			Steps:     len(result.Roadmap),
			Length:    it.Length,
			CreatedAt: it.CreatedAt,
		}
		if err := s.publisher.PublishItineraryComputed(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish itinerary computed failed", "id", it.ID, "error", err)
		}
	}

	return it, nil
}

// Get returns a stored itinerary.
func (s *ItineraryService) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	if s.itineraries == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: itinerary %s", domain.ErrNotFound, id)
	}
	return s.itineraries.GetByID(ctx, id)
}

// List returns stored itineraries, newest first, with the total count.
func (s *ItineraryService) List(ctx context.Context, offset, limit int) ([]domain.Itinerary, int, error) {
	if s.itineraries == nil {
		return nil, 0, nil
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.itineraries.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itineraries.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func validateQuery(q domain.ItineraryQuery) error {
	switch {
	case q.Plugin == "":
		return fmt.Errorf("%w: no routing plugin selected", domain.ErrInvalidQuery)
	case len(q.Steps) == 0:
		return fmt.Errorf("%w: at least one destination is required", domain.ErrInvalidQuery)
	case len(q.Criteria) == 0:
		return fmt.Errorf("%w: at least one optimizing criterion is required", domain.ErrInvalidQuery)
	}
	if err := validateConstraint(q.DepartureConstraint); err != nil {
		return fmt.Errorf("%w: departure constraint: %v", domain.ErrInvalidQuery, err)
	}
	for i, st := range q.Steps {
		if err := validateConstraint(st.Constraint); err != nil {
			return fmt.Errorf("%w: step %d: %v", domain.ErrInvalidQuery, i+1, err)
		}
	}
	return nil
}

const constraintLayout = "2006-01-02T15:04:05"

func validateConstraint(c domain.Constraint) error {
	switch c.Kind {
	case domain.ConstraintNone, domain.ConstraintArriveBefore, domain.ConstraintDepartAfter:
	default:
		return fmt.Errorf("unknown constraint type %d", c.Kind)
	}
	if c.DateTime == "" {
		if c.Kind != domain.ConstraintNone {
			return errors.New("date_time is required")
		}
		return nil
	}
	if _, err := time.Parse(constraintLayout, c.DateTime); err != nil {
		return fmt.Errorf("date_time %q: expected YYYY-MM-DDThh:mm:ss", c.DateTime)
	}
	return nil
}

// selectTransportTypes keeps the advertised types whose id is in ids, in
// selection order. An empty selection keeps them all.
func selectTransportTypes(all []domain.TransportType, ids []int) ([]domain.TransportType, error) {
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[int]domain.TransportType, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	out := make([]domain.TransportType, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown transport type %d", domain.ErrInvalidQuery, id)
		}
		out = append(out, t)
	}
	return out, nil
}

// selectNetworks keeps the advertised networks whose id is in ids. An empty
// selection keeps them all.
func selectNetworks(all []domain.Network, ids []int64) ([]domain.Network, error) {
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[int64]domain.Network, len(all))
	for _, n := range all {
		byID[n.ID] = n
	}
	out := make([]domain.Network, 0, len(ids))
	for _, id := range ids {
		n, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown network %d", domain.ErrInvalidQuery, id)
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeErrorKind(err error) string {
	switch {
	case errors.Is(err, roadmap.ErrUnknownStepKind):
		return "unknown_step_kind"
	case errors.Is(err, roadmap.ErrMissingField):
		return "missing_field"
	case errors.Is(err, roadmap.ErrInvalidField):
		return "invalid_field"
	default:
		return "other"
	}
}
