package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
	"github.com/samirrijal/tempusgw/internal/pkg/metrics"
)

// SessionService exposes the backend state, its plugins and their options,
// and the session constants.
type SessionService struct {
	backend      ports.RoutingBackend
	cache        ports.CacheService
	cacheKey     string
	constantsTTL int
}

// NewSessionService creates a new SessionService. backendName scopes the
// constants cache key so several gateways can share one cache.
func NewSessionService(backend ports.RoutingBackend, cache ports.CacheService, backendName string, constantsTTL int) *SessionService {
	if constantsTTL <= 0 {
		constantsTTL = 3600
	}
	return &SessionService{
		backend:      backend,
		cache:        cache,
		cacheKey:     "constants:" + backendName,
		constantsTTL: constantsTTL,
	}
}

// ConnectResult is the outcome of connecting to the backend.
type ConnectResult struct {
	Status  domain.ServerStatus `json:"status"`
	Plugins []string            `json:"plugins"`
}

// State queries the backend state and records it in the backend_state gauge.
func (s *SessionService) State(ctx context.Context) (domain.ServerStatus, error) {
	status, err := s.backend.State(ctx)
	if err != nil {
		metrics.BackendState.Set(float64(domain.StateUnknown))
		return status, fmt.Errorf("backend state: %w", err)
	}
	metrics.BackendState.Set(float64(status.State))
	return status, nil
}

// Connect reads the state and the plugin list.
func (s *SessionService) Connect(ctx context.Context) (*ConnectResult, error) {
	status, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	plugins, err := s.Plugins(ctx)
	if err != nil {
		return nil, err
	}
	return &ConnectResult{Status: status, Plugins: plugins}, nil
}

// Plugins lists the routing plugins loaded by the backend.
func (s *SessionService) Plugins(ctx context.Context) ([]string, error) {
	plugins, err := s.backend.Plugins(ctx)
	if err != nil {
		return nil, fmt.Errorf("plugin list: %w", err)
	}
	return plugins, nil
}

// PluginOptions merges option descriptions with their current values.
func (s *SessionService) PluginOptions(ctx context.Context, plugin string) ([]domain.PluginOption, error) {
	if plugin == "" {
		return nil, fmt.Errorf("%w: plugin name must not be empty", domain.ErrInvalidQuery)
	}
	opts, err := s.backend.OptionDescriptions(ctx, plugin)
	if err != nil {
		return nil, fmt.Errorf("option descriptions: %w", err)
	}
	values, err := s.backend.Options(ctx, plugin)
	if err != nil {
		return nil, fmt.Errorf("option values: %w", err)
	}
	for i := range opts {
		opts[i].Value = values[opts[i].Name]
	}
	return opts, nil
}

// SetPluginOption coerces raw to the declared option type and sends it.
func (s *SessionService) SetPluginOption(ctx context.Context, plugin, name, raw string) (*domain.PluginOption, error) {
	opts, err := s.backend.OptionDescriptions(ctx, plugin)
	if err != nil {
		return nil, fmt.Errorf("option descriptions: %w", err)
	}

	var opt *domain.PluginOption
	for i := range opts {
		if opts[i].Name == name {
			opt = &opts[i]
			break
		}
	}
	if opt == nil {
		return nil, fmt.Errorf("%w: %s has no option %q", domain.ErrUnknownOption, plugin, name)
	}

	value, err := CoerceOption(opt.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: option %s: %v", domain.ErrInvalidQuery, name, err)
	}
	if err := s.backend.SetOption(ctx, plugin, name, value); err != nil {
		return nil, fmt.Errorf("set option %s: %w", name, err)
	}
	opt.Value = value
	return opt, nil
}

// CoerceOption renders raw in the wire form of an option type: booleans
// become "1" or "0", numbers are validated and normalised.
func CoerceOption(t domain.OptionType, raw string) (string, error) {
	switch t {
	case domain.OptionBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", err
		}
		if b {
			return "1", nil
		}
		return "0", nil
	case domain.OptionInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	case domain.OptionFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	default:
		return raw, nil
	}
}

// Constants returns the transport types and networks of the loaded graph,
// cached until the next graph build.
func (s *SessionService) Constants(ctx context.Context) (domain.Constants, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, s.cacheKey); err == nil {
			var consts domain.Constants
			if err := json.Unmarshal(data, &consts); err == nil {
				metrics.CacheHits.WithLabelValues("constants").Inc()
				return consts, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("constants").Inc()
	}

	consts, err := s.backend.Constants(ctx)
	if err != nil {
		return domain.Constants{}, fmt.Errorf("constant list: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(consts); err == nil {
			_ = s.cache.Set(ctx, s.cacheKey, data, s.constantsTTL)
		}
	}
	return consts, nil
}

// InvalidateConstants drops the cached constants.
func (s *SessionService) InvalidateConstants(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, s.cacheKey)
}
