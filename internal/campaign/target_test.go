package campaign

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapwin-admin/internal/status"
	"snapwin-admin/models"
)

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"all users", Target{Mode: ModeAllUsers}, false},
		{"raffle users", Target{Mode: ModeRaffleUsers, RaffleID: "r1"}, false},
		{"raffle users missing raffle", Target{Mode: ModeRaffleUsers}, true},
		{"selected customers", Target{Mode: ModeSelectedCustomers, CustomerIDs: []string{"c1"}}, false},
		{"selected customers empty", Target{Mode: ModeSelectedCustomers}, true},
		{"attempt status", Target{Mode: ModeAttemptStatus, RaffleID: "r1", PaymentStatus: models.PaymentFailed}, false},
		{"attempt status missing status", Target{Mode: ModeAttemptStatus, RaffleID: "r1"}, true},
		{"attempt status unknown status", Target{Mode: ModeAttemptStatus, RaffleID: "r1", PaymentStatus: "refunded"}, true},
		{"attempt status missing raffle", Target{Mode: ModeAttemptStatus, PaymentStatus: models.PaymentFailed}, true},
		{"multi raffle union", Target{Mode: ModeMultiRaffleUnion, RaffleIDs: []string{"r1", "r2"}}, false},
		{"multi raffle union single raffle", Target{Mode: ModeMultiRaffleUnion, RaffleIDs: []string{"r1"}}, true},
		{"missing mode", Target{}, true},
		{"unknown mode", Target{Mode: "everyone"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, status.ErrInvalidTarget)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type fakeResolver struct {
	ids []string
	err error
}

func (r *fakeResolver) Resolve(ctx context.Context, target Target) ([]string, error) {
	return r.ids, r.err
}

type fakeCampaignStore struct {
	campaigns  int
	deliveries map[string]models.DeliveryStatus
}

func (s *fakeCampaignStore) CreateCampaign(ctx context.Context, msg Message, mode Mode, recipients int) (string, error) {
	s.campaigns++
	return "camp1", nil
}

func (s *fakeCampaignStore) CreateDelivery(ctx context.Context, campaignID, customerID string, st models.DeliveryStatus, errText string) error {
	if s.deliveries == nil {
		s.deliveries = make(map[string]models.DeliveryStatus)
	}
	s.deliveries[customerID] = st
	return nil
}

type fakeInvoker struct {
	name    string
	payload map[string]any
	respond func(out any)
	err     error
}

func (i *fakeInvoker) Invoke(ctx context.Context, name string, payload any, out any) error {
	i.name = name
	i.payload, _ = payload.(map[string]any)
	if i.err != nil {
		return i.err
	}
	if i.respond != nil {
		i.respond(out)
	}
	return nil
}

func TestSend_RecordsPerRecipientOutcomes(t *testing.T) {
	store := &fakeCampaignStore{}
	invoker := &fakeInvoker{respond: func(out any) {
		result := out.(*sendCampaignResult)
		result.Deliveries = []struct {
			Customer string `json:"customer"`
			OK       bool   `json:"ok"`
			Error    string `json:"error"`
		}{
			{Customer: "c1", OK: true},
			{Customer: "c2", OK: false, Error: "no push token"},
		}
	}}
	svc := NewService(&fakeResolver{ids: []string{"c1", "c2", "c3"}}, store, invoker)

	result, err := svc.Send(context.Background(), Message{Title: "Draw tonight", Body: "Last chance"}, Target{Mode: ModeAllUsers})
	require.NoError(t, err)

	assert.Equal(t, "send-campaign", invoker.name)
	assert.Equal(t, 3, result.Recipients)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, 2, result.Failed, "unreported recipients count as failed")
	assert.Equal(t, models.DeliveryOK, store.deliveries["c1"])
	assert.Equal(t, models.DeliveryFailed, store.deliveries["c2"])
	assert.Equal(t, models.DeliveryFailed, store.deliveries["c3"])
}

func TestSend_InvokeFailureMarksAllFailed(t *testing.T) {
	store := &fakeCampaignStore{}
	invoker := &fakeInvoker{err: errors.New("function host down")}
	svc := NewService(&fakeResolver{ids: []string{"c1", "c2"}}, store, invoker)

	result, err := svc.Send(context.Background(), Message{Title: "t", Body: "b"}, Target{Mode: ModeAllUsers})
	require.Error(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, models.DeliveryFailed, store.deliveries["c1"])
	assert.Equal(t, models.DeliveryFailed, store.deliveries["c2"])
}

func TestSend_EmptyAudienceSkipsInvoke(t *testing.T) {
	store := &fakeCampaignStore{}
	invoker := &fakeInvoker{}
	svc := NewService(&fakeResolver{}, store, invoker)

	result, err := svc.Send(context.Background(), Message{Title: "t", Body: "b"}, Target{Mode: ModeAllUsers})
	require.NoError(t, err)
	assert.Zero(t, result.Recipients)
	assert.Empty(t, invoker.name, "no recipients means no remote call")
	assert.Equal(t, 1, store.campaigns, "the audit record is still written")
}

func TestSend_InvalidTargetRejectedBeforeResolve(t *testing.T) {
	svc := NewService(&fakeResolver{err: errors.New("must not be called")}, &fakeCampaignStore{}, &fakeInvoker{})

	_, err := svc.Send(context.Background(), Message{Title: "t", Body: "b"}, Target{Mode: ModeRaffleUsers})
	assert.ErrorIs(t, err, status.ErrInvalidTarget)

	_, err = svc.Send(context.Background(), Message{}, Target{Mode: ModeAllUsers})
	assert.ErrorIs(t, err, status.ErrInvalidTarget)
}

func TestDrawWinner(t *testing.T) {
	invoker := &fakeInvoker{respond: func(out any) {
		m := out.(*map[string]any)
		*m = map[string]any{"winner_ticket": "t42"}
	}}
	svc := NewService(&fakeResolver{}, &fakeCampaignStore{}, invoker)

	out, err := svc.DrawWinner(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "draw-winner", invoker.name)
	assert.Equal(t, "r1", invoker.payload["raffle_id"])
	assert.Equal(t, "t42", out["winner_ticket"])
}
