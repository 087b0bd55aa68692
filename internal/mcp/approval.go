package mcpserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"canvas/internal/storage"
)

// Approval events.
const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

const (
	defaultApprovalTimeout = 120 * time.Second
	approvalPollInterval   = 500 * time.Millisecond
)

// EventEmitter allows the server to notify whoever drives the canvas.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. block ids)
}

// actionResult is sent through the channel when user approves/rejects.
type actionResult struct {
	approved bool
}

// ApprovalQueue manages human-in-the-loop approval for destructive tool calls.
// It supports two modes:
//   - In-process: pending actions are emitted as events and resolved through channels
//   - Table-based: pending actions are written to the approvals table and polled,
//     so another process sharing the database can resolve them
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]chan actionResult
	emitter EventEmitter
	logger  *log.Logger
	timeout time.Duration
	auto    bool

	store *storage.ApprovalStore
}

func NewApprovalQueue(emitter EventEmitter, logger *log.Logger) *ApprovalQueue {
	if logger == nil {
		logger = log.Default()
	}
	return &ApprovalQueue{
		pending: make(map[string]chan actionResult),
		emitter: emitter,
		logger:  logger,
		timeout: defaultApprovalTimeout,
	}
}

// SetStore enables table-based approval.
func (q *ApprovalQueue) SetStore(store *storage.ApprovalStore) {
	q.store = store
}

// SetAutoApprove makes every request succeed immediately.
func (q *ApprovalQueue) SetAutoApprove(v bool) {
	q.auto = v
}

// SetTimeout changes how long a request waits for a decision.
func (q *ApprovalQueue) SetTimeout(d time.Duration) {
	if d > 0 {
		q.timeout = d
	}
}

// Request sends an approval request and blocks until approved, rejected,
// timed out or ctx is done. metadata is optional JSON with extra context.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description string, metadata ...string) (bool, error) {
	if q.auto {
		q.logger.Debug("auto-approved", "tool", tool)
		return true, nil
	}
	id := uuid.New().String()
	meta := "{}"
	if len(metadata) > 0 && metadata[0] != "" {
		meta = metadata[0]
	}

	if q.store != nil {
		return q.requestViaStore(ctx, id, tool, description, meta)
	}
	return q.requestViaChannel(ctx, id, tool, description, meta)
}

// requestViaStore writes a pending approval row and polls until resolved.
func (q *ApprovalQueue) requestViaStore(ctx context.Context, id, tool, description, metadata string) (bool, error) {
	err := q.store.Create(&storage.Approval{ID: id, Tool: tool, Description: description, Metadata: metadata})
	if err != nil {
		return false, err
	}
	defer func() {
		if err := q.store.Delete(id); err != nil {
			q.logger.Warn("drop approval", "id", id, "err", err)
		}
	}()

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(approvalPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := q.store.Status(id)
			if err != nil {
				continue
			}
			switch status {
			case storage.ApprovalApproved:
				return true, nil
			case storage.ApprovalRejected:
				return false, fmt.Errorf("action rejected by user: %s", tool)
			}
		case <-deadline.C:
			return false, fmt.Errorf("action timed out after %s: %s", q.timeout, tool)
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(ctx context.Context, id, tool, description, metadata string) (bool, error) {
	ch := make(chan actionResult, 1)

	q.mu.Lock()
	q.pending[id] = ch
	q.mu.Unlock()
	defer q.cleanup(id)

	q.emitter.Emit(ctx, EventApprovalRequired, PendingAction{
		ID:          id,
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	})

	select {
	case result := <-ch:
		if !result.approved {
			return false, fmt.Errorf("action rejected by user: %s", tool)
		}
		return true, nil
	case <-time.After(q.timeout):
		q.emitter.Emit(ctx, EventApprovalDismissed, map[string]string{"id": id})
		return false, fmt.Errorf("action timed out after %s: %s", q.timeout, tool)
	case <-ctx.Done():
		q.emitter.Emit(ctx, EventApprovalDismissed, map[string]string{"id": id})
		return false, ctx.Err()
	}
}

// Approve marks a pending action as approved.
func (q *ApprovalQueue) Approve(actionID string) bool {
	return q.resolve(actionID, true)
}

// Reject marks a pending action as rejected.
func (q *ApprovalQueue) Reject(actionID string) bool {
	return q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) bool {
	if q.store != nil {
		ok, err := q.store.Resolve(actionID, approved)
		if err != nil {
			q.logger.Warn("resolve approval", "id", actionID, "err", err)
		}
		return ok
	}
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- actionResult{approved: approved}:
		return true
	default:
		return false
	}
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
