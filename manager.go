package voicelive

import (
	"sync"
	"time"

	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"go.uber.org/zap"
)

// StatusConnected is the only status tracked centrally; richer state lives in
// the relay's own state machine.
const StatusConnected = "connected"

// ConnectionInfo is the registry's reduced view of one session.
type ConnectionInfo struct {
	CallerID       string
	ConnectionType ConnectionType
	ConnectedAt    time.Time
	Status         string
}

// ConnectionManager performs admission control and bookkeeping across
// sessions. It never does I/O and never blocks on external calls; one
// instance is constructed by the composition root and handed to every relay.
type ConnectionManager struct {
	logger shared.LoggerAdapter

	mu       sync.Mutex
	conns    map[string]ConnectionInfo
	maxConns int
}

func NewConnectionManager(logger shared.LoggerAdapter, maxConnections int) (*ConnectionManager, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if maxConnections <= 0 {
		maxConnections = defaultMaxConnections
	}
	return &ConnectionManager{
		logger:   logger,
		conns:    make(map[string]ConnectionInfo),
		maxConns: maxConnections,
	}, nil
}

// Register admits a new connection. It returns false, mutating nothing, when
// the limit is reached; the check and insert are atomic with respect to
// concurrent callers.
func (m *ConnectionManager) Register(connectionID, callerID string, connectionType ConnectionType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.conns) >= m.maxConns {
		m.logger.Warn("connection limit reached, rejecting connection",
			zap.Int("active", len(m.conns)),
			zap.Int("max", m.maxConns),
			zap.String("connection_id", connectionID),
		)
		return false
	}
	m.conns[connectionID] = ConnectionInfo{
		CallerID:       callerID,
		ConnectionType: connectionType,
		ConnectedAt:    time.Now(),
		Status:         StatusConnected,
	}
	m.logger.Info("connection registered",
		zap.String("connection_id", connectionID),
		zap.String("type", string(connectionType)),
		zap.String("caller_id", orUnknown(callerID)),
		zap.Int("active", len(m.conns)),
		zap.Int("max", m.maxConns),
	)
	return true
}

// Unregister removes the connection if present. Unknown ids are tolerated.
func (m *ConnectionManager) Unregister(connectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.conns[connectionID]
	if !ok {
		m.logger.Warn("attempted to unregister unknown connection",
			zap.String("connection_id", connectionID),
		)
		return
	}
	delete(m.conns, connectionID)
	m.logger.Info("connection unregistered",
		zap.String("connection_id", connectionID),
		zap.Duration("duration", time.Since(info.ConnectedAt)),
		zap.Int("active", len(m.conns)),
		zap.Int("max", m.maxConns),
	)
}

func (m *ConnectionManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

func (m *ConnectionManager) Get(connectionID string) (ConnectionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.conns[connectionID]
	return info, ok
}

// All returns a point-in-time copy of the registry.
func (m *ConnectionManager) All() map[string]ConnectionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[string]ConnectionInfo, len(m.conns))
	for id, info := range m.conns {
		snapshot[id] = info
	}
	return snapshot
}

func (m *ConnectionManager) MaxConnections() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxConns
}

// SetMaxConnections applies to subsequent Register calls. Non-positive
// values are ignored.
func (m *ConnectionManager) SetMaxConnections(n int) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxConns = n
	m.logger.Info("max connections set", zap.Int("max", n))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
