package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"snapwin-admin/internal/status"
	"snapwin-admin/models"
	"snapwin-admin/monitoring"
)

// LocalState tracks an optimistic message that is not yet confirmed by
// the authoritative insert feed.
type LocalState string

const (
	StateSending LocalState = "sending"
	StateFailed  LocalState = "failed"
)

// LocalMessage is the optimistic local echo of one send.
type LocalMessage struct {
	ClientRef string             `json:"client_ref"`
	Sender    models.SenderType  `json:"sender"`
	Text      string             `json:"text"`
	State     LocalState         `json:"state"`
	QueuedAt  time.Time          `json:"queued_at"`
}

// MessageStore persists support messages.
type MessageStore interface {
	Insert(ctx context.Context, msg models.SupportMessage) (models.SupportMessage, error)
	List(ctx context.Context, requestID string) ([]models.SupportMessage, error)
}

// Broadcaster emits ephemeral typing signals. Signals are never
// persisted.
type Broadcaster interface {
	Typing(sig models.TypingSignal)
}

// Thread is the admin side of one support conversation. It merges the
// persisted message history with a local buffer of optimistic sends,
// tracks the customer's transient typing flag and guards everything
// behind the conversation status: closed is terminal for new messages.
type Thread struct {
	requestID string
	store     MessageStore
	bcast     Broadcaster

	typingIdle      time.Duration
	typingExpiry    time.Duration
	reconcileWindow time.Duration
	now             func() time.Time
	newRef          func() string

	mu         sync.Mutex
	status     models.RequestStatus
	local      []LocalMessage
	draft      string
	peerTyping bool
	peerTimer  *time.Timer
	selfTyping bool
	selfTimer  *time.Timer
}

type Option func(*Thread)

// WithTimings overrides the typing idle, typing expiry and
// reconciliation window durations.
func WithTimings(idle, expiry, window time.Duration) Option {
	return func(t *Thread) {
		t.typingIdle = idle
		t.typingExpiry = expiry
		t.reconcileWindow = window
	}
}

func WithNow(now func() time.Time) Option {
	return func(t *Thread) { t.now = now }
}

func WithRefGenerator(gen func() string) Option {
	return func(t *Thread) { t.newRef = gen }
}

func NewThread(requestID string, st models.RequestStatus, store MessageStore, bcast Broadcaster, opts ...Option) *Thread {
	t := &Thread{
		requestID:       requestID,
		store:           store,
		bcast:           bcast,
		status:          st,
		typingIdle:      1400 * time.Millisecond,
		typingExpiry:    2 * time.Second,
		reconcileWindow: 5 * time.Second,
		now:             time.Now,
		newRef:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Thread) RequestID() string {
	return t.requestID
}

func (t *Thread) Status() models.RequestStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Send appends an optimistic local echo, clears the draft and performs
// the remote insert. The echo stays in the buffer until the insert feed
// confirms it (HandleEcho) or the insert fails.
func (t *Thread) Send(ctx context.Context, text string) (string, error) {
	t.mu.Lock()
	if t.status == models.RequestClosed {
		t.mu.Unlock()
		return "", status.ErrClosedConversation
	}

	ref := t.newRef()
	t.local = append(t.local, LocalMessage{
		ClientRef: ref,
		Sender:    models.SenderAdmin,
		Text:      text,
		State:     StateSending,
		QueuedAt:  t.now(),
	})
	t.draft = ""
	t.mu.Unlock()

	t.stopSelfTyping()

	return ref, t.insert(ctx, ref, text)
}

// Retry re-attempts a failed send under its original correlation ref.
func (t *Thread) Retry(ctx context.Context, ref string) error {
	t.mu.Lock()
	if t.status == models.RequestClosed {
		t.mu.Unlock()
		return status.ErrClosedConversation
	}

	found := false
	var text string
	for i := range t.local {
		if t.local[i].ClientRef == ref && t.local[i].State == StateFailed {
			t.local[i].State = StateSending
			t.local[i].QueuedAt = t.now()
			text = t.local[i].Text
			found = true
			break
		}
	}
	t.mu.Unlock()

	if !found {
		return status.ErrUnknownClientRef
	}
	return t.insert(ctx, ref, text)
}

func (t *Thread) insert(ctx context.Context, ref, text string) error {
	_, err := t.store.Insert(ctx, models.SupportMessage{
		RequestID: t.requestID,
		Sender:    models.SenderAdmin,
		Text:      text,
		ClientRef: ref,
	})
	if err != nil {
		t.mu.Lock()
		for i := range t.local {
			if t.local[i].ClientRef == ref {
				t.local[i].State = StateFailed
				break
			}
		}
		t.mu.Unlock()
		monitoring.TrackChatMessage("failed")
		return err
	}
	return nil
}

// HandleEcho reconciles an authoritative inserted row against the local
// buffer. Rows carrying our correlation ref match by identity; rows
// without one (a legacy client) fall back to exact text within the
// reconciliation window.
func (t *Thread) HandleEcho(msg models.SupportMessage) {
	if msg.RequestID != t.requestID {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if msg.ClientRef != "" {
		for i := range t.local {
			if t.local[i].ClientRef == msg.ClientRef {
				t.local = append(t.local[:i], t.local[i+1:]...)
				monitoring.TrackChatMessage("delivered")
				return
			}
		}
		return
	}

	for i := range t.local {
		entry := t.local[i]
		if entry.State != StateSending || entry.Text != msg.Text {
			continue
		}
		if gap := msg.Created.Sub(entry.QueuedAt); gap >= -t.reconcileWindow && gap <= t.reconcileWindow {
			t.local = append(t.local[:i], t.local[i+1:]...)
			monitoring.TrackChatMessage("delivered")
			return
		}
	}
}

// Messages returns the merged view: the persisted history followed by
// the still-pending local echoes.
func (t *Thread) Messages(ctx context.Context) ([]models.SupportMessage, []LocalMessage, error) {
	persisted, err := t.store.List(ctx, t.requestID)
	if err != nil {
		return nil, nil, err
	}

	t.mu.Lock()
	local := make([]LocalMessage, len(t.local))
	copy(local, t.local)
	t.mu.Unlock()

	return persisted, local, nil
}

// Pending returns a copy of the optimistic buffer.
func (t *Thread) Pending() []LocalMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]LocalMessage, len(t.local))
	copy(out, t.local)
	return out
}

// SetDraft stores the unsent input text.
func (t *Thread) SetDraft(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == models.RequestClosed {
		return status.ErrClosedConversation
	}
	t.draft = text
	return nil
}

func (t *Thread) Draft() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

// SetStatus applies a conversation status transition. Entering closed
// clears all typing state, the draft and any pending local echoes.
func (t *Thread) SetStatus(st models.RequestStatus) {
	t.mu.Lock()
	t.status = st
	if st != models.RequestClosed {
		t.mu.Unlock()
		return
	}

	t.draft = ""
	t.local = nil
	t.peerTyping = false
	t.selfTyping = false
	if t.peerTimer != nil {
		t.peerTimer.Stop()
		t.peerTimer = nil
	}
	timer := t.selfTimer
	t.selfTimer = nil
	t.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
}
