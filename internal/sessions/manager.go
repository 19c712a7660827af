package sessions

import (
	"context"
	"errors"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"go.uber.org/zap"
)

const (
	opManagerNew   = "sessions.manager.new"
	opGetActive    = "sessions.get_active"
	opSetActive    = "sessions.set_active"
	opListJoined   = "sessions.list_joined"
	opClearActive  = "sessions.clear_active"
	opSwitchTo     = "sessions.switch_to"
	reasonRead     = "read_failed"
	reasonWrite    = "write_failed"
	reasonNotFound = "not_joined"
)

// ErrNotJoined reports that a group code is not in the joined list.
var ErrNotJoined = errors.New("sessions: group not joined")

var noOpLogger = zap.NewNop()

// ManagerConfig describes the dependencies of a Manager.
type ManagerConfig struct {
	Adapter *kvstore.Adapter
	Logger  *zap.Logger
}

// Manager owns the active session slot and the joined list.
//
// The joined list keeps the copy of a session stored the first time its group was
// activated. Activating the same group again later, even with an edited profile, does not
// refresh that copy.
type Manager struct {
	adapter *kvstore.Adapter
	logger  *zap.Logger
}

// NewManager constructs a Manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Adapter == nil {
		return nil, kvstore.NewServiceError(opManagerNew, "missing_adapter", kvstore.ErrMissingAdapter)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Manager{adapter: cfg.Adapter, logger: logger}, nil
}

// GetActive returns the active session, if any.
func (m *Manager) GetActive(ctx context.Context) (Session, bool, error) {
	var session Session
	found, err := m.adapter.ReadJSON(ctx, kvstore.KeyActiveSession, &session)
	if err != nil {
		return Session{}, false, kvstore.NewServiceError(opGetActive, reasonRead, err)
	}
	if !found {
		return Session{}, false, nil
	}
	return session, true, nil
}

// SetActive makes session the active one and adds it to the joined list unless a
// session for the same group code is already there.
func (m *Manager) SetActive(ctx context.Context, session Session) error {
	if err := m.adapter.WriteJSON(ctx, kvstore.KeyActiveSession, session); err != nil {
		m.logError(opSetActive, reasonWrite, err, zap.String("group_code", session.Group.Code))
		return kvstore.NewServiceError(opSetActive, reasonWrite, err)
	}

	joined, err := m.loadJoined(ctx)
	if err != nil {
		return kvstore.NewServiceError(opSetActive, reasonRead, err)
	}
	if indexOf(joined, session.Group.Code) >= 0 {
		return nil
	}
	joined = append(joined, session)
	if err := m.adapter.WriteJSON(ctx, kvstore.KeyJoinedSessions, joined); err != nil {
		m.logError(opSetActive, reasonWrite, err, zap.String("group_code", session.Group.Code))
		return kvstore.NewServiceError(opSetActive, reasonWrite, err)
	}
	return nil
}

// ListJoined returns every joined session, one per group code, in join order.
func (m *Manager) ListJoined(ctx context.Context) ([]Session, error) {
	joined, err := m.loadJoined(ctx)
	if err != nil {
		return nil, kvstore.NewServiceError(opListJoined, reasonRead, err)
	}
	if joined == nil {
		return []Session{}, nil
	}
	return joined, nil
}

// ClearActive empties the active slot. The joined list is not touched.
func (m *Manager) ClearActive(ctx context.Context) error {
	if err := m.adapter.Remove(ctx, kvstore.KeyActiveSession); err != nil {
		m.logError(opClearActive, reasonWrite, err)
		return kvstore.NewServiceError(opClearActive, reasonWrite, err)
	}
	return nil
}

// SwitchTo activates the joined session stored for code and returns it.
func (m *Manager) SwitchTo(ctx context.Context, code string) (Session, error) {
	joined, err := m.loadJoined(ctx)
	if err != nil {
		return Session{}, kvstore.NewServiceError(opSwitchTo, reasonRead, err)
	}
	index := indexOf(joined, code)
	if index < 0 {
		return Session{}, kvstore.NewServiceError(opSwitchTo, reasonNotFound, ErrNotJoined)
	}
	target := joined[index]
	if err := m.SetActive(ctx, target); err != nil {
		return Session{}, err
	}
	return target, nil
}

func (m *Manager) loadJoined(ctx context.Context) ([]Session, error) {
	var stored []*Session
	found, err := m.adapter.ReadJSON(ctx, kvstore.KeyJoinedSessions, &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	joined := make([]Session, 0, len(stored))
	for _, session := range stored {
		if session != nil {
			joined = append(joined, *session)
		}
	}
	return joined, nil
}

func indexOf(joined []Session, code string) int {
	for i, session := range joined {
		if session.Group.Code == code {
			return i
		}
	}
	return -1
}

func (m *Manager) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	m.logger.Error("sessions manager error", attrs...)
}
