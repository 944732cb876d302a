package chat

import (
	"time"

	"snapwin-admin/models"
)

// UserTyping records a keystroke by the admin. The first keystroke
// broadcasts typing=true; the stop signal is debounced and only goes
// out after the idle window elapses with no further keystrokes.
func (t *Thread) UserTyping() {
	t.mu.Lock()
	if t.status == models.RequestClosed {
		t.mu.Unlock()
		return
	}

	first := !t.selfTyping
	t.selfTyping = true
	if t.selfTimer != nil {
		t.selfTimer.Reset(t.typingIdle)
	} else {
		t.selfTimer = time.AfterFunc(t.typingIdle, t.selfIdle)
	}
	t.mu.Unlock()

	if first {
		t.bcast.Typing(models.TypingSignal{
			RequestID: t.requestID,
			Sender:    models.SenderAdmin,
			IsTyping:  true,
			Timestamp: t.now(),
		})
	}
}

func (t *Thread) selfIdle() {
	t.mu.Lock()
	if !t.selfTyping {
		t.mu.Unlock()
		return
	}
	t.selfTyping = false
	t.selfTimer = nil
	closed := t.status == models.RequestClosed
	t.mu.Unlock()

	if !closed {
		t.bcast.Typing(models.TypingSignal{
			RequestID: t.requestID,
			Sender:    models.SenderAdmin,
			IsTyping:  false,
			Timestamp: t.now(),
		})
	}
}

// stopSelfTyping cancels the idle debounce and broadcasts the stop
// signal immediately. Sending a message implies the typing burst ended.
func (t *Thread) stopSelfTyping() {
	t.mu.Lock()
	if !t.selfTyping {
		t.mu.Unlock()
		return
	}
	t.selfTyping = false
	if t.selfTimer != nil {
		t.selfTimer.Stop()
		t.selfTimer = nil
	}
	t.mu.Unlock()

	t.bcast.Typing(models.TypingSignal{
		RequestID: t.requestID,
		Sender:    models.SenderAdmin,
		IsTyping:  false,
		Timestamp: t.now(),
	})
}

// HandlePeerTyping applies a received typing signal from the customer.
// A typing=true flag expires on its own when no refresh arrives within
// the expiry window. Closed conversations drop signals entirely.
func (t *Thread) HandlePeerTyping(sig models.TypingSignal) {
	if sig.RequestID != t.requestID || sig.Sender == models.SenderAdmin {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == models.RequestClosed {
		return
	}

	if !sig.IsTyping {
		t.peerTyping = false
		if t.peerTimer != nil {
			t.peerTimer.Stop()
			t.peerTimer = nil
		}
		return
	}

	t.peerTyping = true
	if t.peerTimer != nil {
		t.peerTimer.Reset(t.typingExpiry)
	} else {
		t.peerTimer = time.AfterFunc(t.typingExpiry, t.peerExpired)
	}
}

func (t *Thread) peerExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peerTyping = false
	t.peerTimer = nil
}

// PeerTyping reports whether the customer's typing flag is currently
// visible.
func (t *Thread) PeerTyping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peerTyping
}
