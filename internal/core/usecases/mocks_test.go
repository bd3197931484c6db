package usecases_test

import (
	"context"
	"errors"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/roadmap"
)

// --- Mock RoutingBackend ---

type mockBackend struct {
	calls []string

	stateFn      func(ctx context.Context) (domain.ServerStatus, error)
	pluginsFn    func(ctx context.Context) ([]string, error)
	optionDescFn func(ctx context.Context, plugin string) ([]domain.PluginOption, error)
	optionsFn    func(ctx context.Context, plugin string) (map[string]string, error)
	setOptionFn  func(ctx context.Context, plugin, name, value string) error
	constantsFn  func(ctx context.Context) (domain.Constants, error)
	connectFn    func(ctx context.Context, dbOptions string) error
	preBuildFn   func(ctx context.Context) error
	buildFn      func(ctx context.Context) error
	preProcessFn func(ctx context.Context, plugin string, req roadmap.RequestDocument) error
	processFn    func(ctx context.Context, plugin string) error
	resultFn     func(ctx context.Context, plugin string) (roadmap.ResultDocument, error)
	metricsFn    func(ctx context.Context, plugin string) ([]domain.Metric, error)
}

func (m *mockBackend) State(ctx context.Context) (domain.ServerStatus, error) {
	m.calls = append(m.calls, "state")
	if m.stateFn != nil {
		return m.stateFn(ctx)
	}
	return domain.NewServerStatus(domain.StateGraphBuilt, ""), nil
}

func (m *mockBackend) Plugins(ctx context.Context) ([]string, error) {
	m.calls = append(m.calls, "plugin_list")
	if m.pluginsFn != nil {
		return m.pluginsFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) OptionDescriptions(ctx context.Context, plugin string) ([]domain.PluginOption, error) {
	m.calls = append(m.calls, "get_option_descriptions")
	if m.optionDescFn != nil {
		return m.optionDescFn(ctx, plugin)
	}
	return nil, nil
}

func (m *mockBackend) Options(ctx context.Context, plugin string) (map[string]string, error) {
	m.calls = append(m.calls, "get_options")
	if m.optionsFn != nil {
		return m.optionsFn(ctx, plugin)
	}
	return nil, nil
}

func (m *mockBackend) SetOption(ctx context.Context, plugin, name, value string) error {
	m.calls = append(m.calls, "set_options")
	if m.setOptionFn != nil {
		return m.setOptionFn(ctx, plugin, name, value)
	}
	return nil
}

func (m *mockBackend) Constants(ctx context.Context) (domain.Constants, error) {
	m.calls = append(m.calls, "constant_list")
	if m.constantsFn != nil {
		return m.constantsFn(ctx)
	}
	return domain.Constants{}, nil
}

func (m *mockBackend) Connect(ctx context.Context, dbOptions string) error {
	m.calls = append(m.calls, "connect")
	if m.connectFn != nil {
		return m.connectFn(ctx, dbOptions)
	}
	return nil
}

func (m *mockBackend) PreBuild(ctx context.Context) error {
	m.calls = append(m.calls, "pre_build")
	if m.preBuildFn != nil {
		return m.preBuildFn(ctx)
	}
	return nil
}

func (m *mockBackend) Build(ctx context.Context) error {
	m.calls = append(m.calls, "build")
	if m.buildFn != nil {
		return m.buildFn(ctx)
	}
	return nil
}

func (m *mockBackend) PreProcess(ctx context.Context, plugin string, req roadmap.RequestDocument) error {
	m.calls = append(m.calls, "pre_process")
	if m.preProcessFn != nil {
		return m.preProcessFn(ctx, plugin, req)
	}
	return nil
}

func (m *mockBackend) Process(ctx context.Context, plugin string) error {
	m.calls = append(m.calls, "process")
	if m.processFn != nil {
		return m.processFn(ctx, plugin)
	}
	return nil
}

func (m *mockBackend) Result(ctx context.Context, plugin string) (roadmap.ResultDocument, error) {
	m.calls = append(m.calls, "result")
	if m.resultFn != nil {
		return m.resultFn(ctx, plugin)
	}
	return roadmap.ResultDocument{{Tag: "overview_path"}}, nil
}

func (m *mockBackend) Metrics(ctx context.Context, plugin string) ([]domain.Metric, error) {
	m.calls = append(m.calls, "get_metrics")
	if m.metricsFn != nil {
		return m.metricsFn(ctx, plugin)
	}
	return nil, nil
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- Mock ItineraryRepository ---

type mockItineraryRepo struct {
	insertFn  func(ctx context.Context, it *domain.Itinerary) error
	getByIDFn func(ctx context.Context, id string) (*domain.Itinerary, error)
	listFn    func(ctx context.Context, offset, limit int) ([]domain.Itinerary, error)
	countFn   func(ctx context.Context) (int, error)
}

func (m *mockItineraryRepo) Insert(ctx context.Context, it *domain.Itinerary) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, it)
	}
	return nil
}

func (m *mockItineraryRepo) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockItineraryRepo) List(ctx context.Context, offset, limit int) ([]domain.Itinerary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockItineraryRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	computed []*domain.ItineraryComputedEvent
	built    []*domain.GraphBuiltEvent
}

func (m *mockPublisher) PublishItineraryComputed(ctx context.Context, event *domain.ItineraryComputedEvent) error {
	m.computed = append(m.computed, event)
	return nil
}

func (m *mockPublisher) PublishGraphBuilt(ctx context.Context, event *domain.GraphBuiltEvent) error {
	m.built = append(m.built, event)
	return nil
}

// --- Mock GraphBuildStarter ---

type mockStarter struct {
	runFn func(ctx context.Context, dbOptions string) (domain.ServerStatus, error)
}

func (m *mockStarter) RunGraphBuild(ctx context.Context, dbOptions string) (domain.ServerStatus, error) {
	return m.runFn(ctx, dbOptions)
}
