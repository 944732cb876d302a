package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"
	pubnub "github.com/pubnub/go"

	"snapwin-admin/models"
)

// TypingChannel names the ephemeral typing channel of one
// conversation.
func TypingChannel(requestID string) string {
	return fmt.Sprintf("support-typing-%s", requestID)
}

// RecordStore persists messages and request status through the app's
// collections.
type RecordStore struct {
	app core.App
}

func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func (s *RecordStore) Insert(ctx context.Context, msg models.SupportMessage) (models.SupportMessage, error) {
	col, err := s.app.FindCollectionByNameOrId("support_messages")
	if err != nil {
		return models.SupportMessage{}, fmt.Errorf("find support_messages collection: %w", err)
	}

	rec := core.NewRecord(col)
	rec.Set("request", msg.RequestID)
	rec.Set("sender", string(msg.Sender))
	rec.Set("text", msg.Text)
	rec.Set("client_ref", msg.ClientRef)

	if err := s.app.Save(rec); err != nil {
		return models.SupportMessage{}, fmt.Errorf("insert support message: %w", err)
	}
	return models.SupportMessageFromRecord(rec), nil
}

func (s *RecordStore) List(ctx context.Context, requestID string) ([]models.SupportMessage, error) {
	records, err := s.app.FindRecordsByFilter(
		"support_messages",
		"request = {:req}",
		"created",
		-1,
		0,
		map[string]any{"req": requestID},
	)
	if err != nil {
		return nil, fmt.Errorf("list support messages: %w", err)
	}

	out := make([]models.SupportMessage, 0, len(records))
	for _, rec := range records {
		out = append(out, models.SupportMessageFromRecord(rec))
	}
	return out, nil
}

// RequestStatus loads the current status of a support request.
func (s *RecordStore) RequestStatus(ctx context.Context, requestID string) (models.RequestStatus, error) {
	rec, err := s.app.FindRecordById("support_requests", requestID)
	if err != nil {
		return "", fmt.Errorf("find support request %s: %w", requestID, err)
	}
	return models.RequestStatus(rec.GetString("status")), nil
}

// CloseRequest marks a support request closed.
func (s *RecordStore) CloseRequest(ctx context.Context, requestID string) error {
	rec, err := s.app.FindRecordById("support_requests", requestID)
	if err != nil {
		return fmt.Errorf("find support request %s: %w", requestID, err)
	}
	rec.Set("status", string(models.RequestClosed))
	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("close support request %s: %w", requestID, err)
	}
	return nil
}

// PubNubBroadcaster fans typing signals out to the conversation's
// typing channel.
type PubNubBroadcaster struct {
	pn *pubnub.PubNub
}

func NewPubNubBroadcaster(pn *pubnub.PubNub) *PubNubBroadcaster {
	return &PubNubBroadcaster{pn: pn}
}

func (b *PubNubBroadcaster) Typing(sig models.TypingSignal) {
	_, _, err := b.pn.Publish().
		Channel(TypingChannel(sig.RequestID)).
		Message(map[string]any{
			"type":      "typing",
			"request":   sig.RequestID,
			"sender":    string(sig.Sender),
			"is_typing": sig.IsTyping,
			"ts":        sig.Timestamp.Format(time.RFC3339),
		}).
		Execute()
	if err != nil {
		slog.Error("publish typing signal", "request", sig.RequestID, "error", err)
	}
}

// Timings carries the thread timing knobs from config.
type Timings struct {
	TypingIdle      time.Duration
	TypingExpiry    time.Duration
	ReconcileWindow time.Duration
}

// ConversationStore is the persistence surface the service needs on
// top of per-thread message access.
type ConversationStore interface {
	MessageStore
	RequestStatus(ctx context.Context, requestID string) (models.RequestStatus, error)
	CloseRequest(ctx context.Context, requestID string) error
}

// channelSubscriber manages the per-conversation typing channel
// lifecycle.
type channelSubscriber interface {
	Subscribe(channel string)
	Unsubscribe(channel string)
}

type pubnubSubscriber struct {
	pn *pubnub.PubNub
}

func (p pubnubSubscriber) Subscribe(channel string) {
	p.pn.Subscribe().Channels([]string{channel}).Execute()
}

func (p pubnubSubscriber) Unsubscribe(channel string) {
	p.pn.Unsubscribe().Channels([]string{channel}).Execute()
}

// Service owns the live conversation threads, routes the insert feed
// into them and keeps typing subscriptions alive.
type Service struct {
	store   ConversationStore
	bcast   Broadcaster
	sub     channelSubscriber
	pn      *pubnub.PubNub
	timings Timings

	mu      sync.Mutex
	threads map[string]*Thread
}

func NewService(app core.App, pn *pubnub.PubNub, timings Timings) *Service {
	s := newService(NewRecordStore(app), NewPubNubBroadcaster(pn), pubnubSubscriber{pn: pn}, timings)
	s.pn = pn
	return s
}

func newService(store ConversationStore, bcast Broadcaster, sub channelSubscriber, timings Timings) *Service {
	return &Service{
		store:   store,
		bcast:   bcast,
		sub:     sub,
		timings: timings,
		threads: make(map[string]*Thread),
	}
}

// Thread returns the live thread for a conversation, creating it from
// the persisted request on first access.
func (s *Service) Thread(ctx context.Context, requestID string) (*Thread, error) {
	s.mu.Lock()
	if t, ok := s.threads[requestID]; ok {
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()

	st, err := s.store.RequestStatus(ctx, requestID)
	if err != nil {
		return nil, err
	}

	t := NewThread(requestID, st, s.store, s.bcast,
		WithTimings(s.timings.TypingIdle, s.timings.TypingExpiry, s.timings.ReconcileWindow))

	// Closed conversations stay transient: history is still readable,
	// but nothing live is kept or subscribed for them.
	if st == models.RequestClosed {
		return t, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.threads[requestID]; ok {
		return existing, nil
	}
	s.threads[requestID] = t
	s.sub.Subscribe(TypingChannel(requestID))

	return t, nil
}

// evict closes a live thread, drops it from the map and tears down its
// typing subscription so long-lived processes don't accumulate dead
// channels.
func (s *Service) evict(requestID string) {
	s.mu.Lock()
	t, ok := s.threads[requestID]
	if ok {
		delete(s.threads, requestID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	t.SetStatus(models.RequestClosed)
	s.sub.Unsubscribe(TypingChannel(requestID))
}

// Close marks a conversation closed, both in the store and in the live
// thread.
func (s *Service) Close(ctx context.Context, requestID string) error {
	if err := s.store.CloseRequest(ctx, requestID); err != nil {
		return err
	}
	s.evict(requestID)
	return nil
}

// Bind attaches the service to the app's record hooks so inserted
// messages reconcile local echoes and request status changes propagate
// into live threads.
func (s *Service) Bind(app core.App) {
	app.OnRecordAfterCreateSuccess("support_messages").BindFunc(func(e *core.RecordEvent) error {
		msg := models.SupportMessageFromRecord(e.Record)
		s.mu.Lock()
		t, ok := s.threads[msg.RequestID]
		s.mu.Unlock()
		if ok {
			t.HandleEcho(msg)
		}
		return e.Next()
	})

	app.OnRecordAfterUpdateSuccess("support_requests").BindFunc(func(e *core.RecordEvent) error {
		st := models.RequestStatus(e.Record.GetString("status"))
		if st == models.RequestClosed {
			s.evict(e.Record.Id)
			return e.Next()
		}
		s.mu.Lock()
		t, ok := s.threads[e.Record.Id]
		s.mu.Unlock()
		if ok {
			t.SetStatus(st)
		}
		return e.Next()
	})
}

// ListenTyping consumes the shared PubNub listener and routes typing
// signals into their threads. Runs until the context is cancelled.
func (s *Service) ListenTyping(ctx context.Context) {
	listener := pubnub.NewListener()
	s.pn.AddListener(listener)

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-listener.Message:
			s.handleTypingMessage(message)
		}
	}
}

func (s *Service) handleTypingMessage(message *pubnub.PNMessage) {
	raw, err := json.Marshal(message.Message)
	if err != nil {
		return
	}

	var payload struct {
		Type      string `json:"type"`
		Request   string `json:"request"`
		Sender    string `json:"sender"`
		IsTyping  bool   `json:"is_typing"`
		Timestamp string `json:"ts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Type != "typing" {
		return
	}

	s.mu.Lock()
	t, ok := s.threads[payload.Request]
	s.mu.Unlock()
	if !ok {
		return
	}

	ts, _ := time.Parse(time.RFC3339, payload.Timestamp)
	t.HandlePeerTyping(models.TypingSignal{
		RequestID: payload.Request,
		Sender:    models.SenderType(payload.Sender),
		IsTyping:  payload.IsTyping,
		Timestamp: ts,
	})
}
