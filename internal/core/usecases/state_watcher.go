package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
)

// StateWatcher polls the backend state and publishes every transition.
type StateWatcher struct {
	session   *SessionService
	publisher ports.StatePublisher

	mu   sync.Mutex
	last *domain.ServerStatus
}

// NewStateWatcher creates a new StateWatcher. publisher may be nil.
func NewStateWatcher(session *SessionService, publisher ports.StatePublisher) *StateWatcher {
	return &StateWatcher{session: session, publisher: publisher}
}

// Poll reads the state once. It reports whether the state differs from the
// previous poll; the first successful poll always counts as a change.
// A failed read is seen as StateUnknown.
func (w *StateWatcher) Poll(ctx context.Context) (domain.ServerStatus, bool) {
	status, err := w.session.State(ctx)
	if err != nil {
		slog.WarnContext(ctx, "backend state poll failed", "error", err)
		status = domain.NewServerStatus(domain.StateUnknown, "")
	}

	w.mu.Lock()
	changed := w.last == nil || w.last.State != status.State || w.last.DBOptions != status.DBOptions
	w.last = &status
	w.mu.Unlock()

	if !changed {
		return status, false
	}
	slog.InfoContext(ctx, "backend state changed", "state", status.StateText, "db_options", status.DBOptions)
	if w.publisher != nil {
		if err := w.publisher.PublishState(ctx, status); err != nil {
			slog.WarnContext(ctx, "publish backend state failed", "error", err)
		}
	}
	return status, true
}

// Last returns the state seen by the latest poll.
func (w *StateWatcher) Last() (domain.ServerStatus, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return domain.ServerStatus{}, false
	}
	return *w.last, true
}
