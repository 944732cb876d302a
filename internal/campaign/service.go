package campaign

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"snapwin-admin/models"
	"snapwin-admin/monitoring"
)

// Invoker invokes a named remote function with a JSON payload.
type Invoker interface {
	Invoke(ctx context.Context, name string, payload any, out any) error
}

// Store persists the campaign audit trail.
type Store interface {
	CreateCampaign(ctx context.Context, msg Message, mode Mode, recipients int) (string, error)
	CreateDelivery(ctx context.Context, campaignID, customerID string, st models.DeliveryStatus, errText string) error
}

// AudienceResolver turns a target into the set of recipient customer
// ids.
type AudienceResolver interface {
	Resolve(ctx context.Context, target Target) ([]string, error)
}

// Result summarizes one campaign send.
type Result struct {
	CampaignID string `json:"campaign_id"`
	Recipients int    `json:"recipients"`
	Delivered  int    `json:"delivered"`
	Failed     int    `json:"failed"`
}

// Service resolves a campaign audience, hands it to the remote
// send-campaign function and records per-recipient outcomes.
type Service struct {
	resolver AudienceResolver
	store    Store
	invoker  Invoker
}

func NewService(resolver AudienceResolver, store Store, invoker Invoker) *Service {
	return &Service{resolver: resolver, store: store, invoker: invoker}
}

// sendCampaignResult mirrors the remote function's response body.
type sendCampaignResult struct {
	Deliveries []struct {
		Customer string `json:"customer"`
		OK       bool   `json:"ok"`
		Error    string `json:"error"`
	} `json:"deliveries"`
}

func (s *Service) Send(ctx context.Context, msg Message, target Target) (Result, error) {
	if err := msg.Validate(); err != nil {
		return Result{}, err
	}
	if err := target.Validate(); err != nil {
		return Result{}, err
	}

	audience, err := s.resolver.Resolve(ctx, target)
	if err != nil {
		return Result{}, fmt.Errorf("resolve audience: %w", err)
	}

	campaignID, err := s.store.CreateCampaign(ctx, msg, target.Mode, len(audience))
	if err != nil {
		return Result{}, fmt.Errorf("record campaign: %w", err)
	}

	result := Result{CampaignID: campaignID, Recipients: len(audience)}
	if len(audience) == 0 {
		return result, nil
	}

	var fnResult sendCampaignResult
	invokeErr := s.invoker.Invoke(ctx, "send-campaign", map[string]any{
		"campaign_id":  campaignID,
		"title":        msg.Title,
		"body":         msg.Body,
		"customer_ids": audience,
	}, &fnResult)

	outcomes := make(map[string]struct {
		ok      bool
		errText string
	}, len(fnResult.Deliveries))
	for _, d := range fnResult.Deliveries {
		outcomes[d.Customer] = struct {
			ok      bool
			errText string
		}{d.OK, d.Error}
	}

	for _, customerID := range audience {
		st := models.DeliveryFailed
		errText := ""
		switch {
		case invokeErr != nil:
			errText = invokeErr.Error()
		default:
			outcome, reported := outcomes[customerID]
			if reported && outcome.ok {
				st = models.DeliveryOK
			} else if reported {
				errText = outcome.errText
			} else {
				errText = "no delivery outcome reported"
			}
		}

		if err := s.store.CreateDelivery(ctx, campaignID, customerID, st, errText); err != nil {
			slog.Error("record delivery", "campaign", campaignID, "customer", customerID, "error", err)
			continue
		}
		monitoring.TrackDelivery(string(st))
		if st == models.DeliveryOK {
			result.Delivered++
		} else {
			result.Failed++
		}
	}

	if invokeErr != nil {
		return result, fmt.Errorf("send-campaign: %w", invokeErr)
	}
	return result, nil
}

// DrawWinner invokes the remote draw function for a raffle. The
// function owns the draw semantics; its response is passed through
// untouched.
func (s *Service) DrawWinner(ctx context.Context, raffleID string) (map[string]any, error) {
	var out map[string]any
	if err := s.invoker.Invoke(ctx, "draw-winner", map[string]any{"raffle_id": raffleID}, &out); err != nil {
		return nil, fmt.Errorf("draw-winner: %w", err)
	}
	return out, nil
}

// RecordResolver resolves audiences against the app's collections.
type RecordResolver struct {
	app core.App
}

func NewRecordResolver(app core.App) *RecordResolver {
	return &RecordResolver{app: app}
}

func (r *RecordResolver) Resolve(ctx context.Context, target Target) ([]string, error) {
	var ids []string

	switch target.Mode {
	case ModeAllUsers:
		err := r.app.DB().
			Select("id").
			From("customers").
			WithContext(ctx).
			Column(&ids)
		if err != nil {
			return nil, err
		}
	case ModeRaffleUsers:
		err := r.app.DB().
			Select("customer").
			Distinct(true).
			From("tickets").
			Where(dbx.HashExp{"raffle": target.RaffleID}).
			WithContext(ctx).
			Column(&ids)
		if err != nil {
			return nil, err
		}
	case ModeSelectedCustomers:
		ids = target.CustomerIDs
	case ModeAttemptStatus:
		err := r.app.DB().
			Select("customer").
			Distinct(true).
			From("tickets").
			Where(dbx.HashExp{
				"raffle":         target.RaffleID,
				"payment_status": string(target.PaymentStatus),
			}).
			WithContext(ctx).
			Column(&ids)
		if err != nil {
			return nil, err
		}
	case ModeMultiRaffleUnion:
		err := r.app.DB().
			Select("customer").
			Distinct(true).
			From("tickets").
			Where(dbx.In("raffle", toAny(target.RaffleIDs)...)).
			WithContext(ctx).
			Column(&ids)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unresolvable mode %q", target.Mode)
	}

	return dedupe(ids), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// RecordStore writes the audit records.
type RecordStore struct {
	app core.App
}

func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func (s *RecordStore) CreateCampaign(ctx context.Context, msg Message, mode Mode, recipients int) (string, error) {
	col, err := s.app.FindCollectionByNameOrId("notification_campaigns")
	if err != nil {
		return "", fmt.Errorf("find notification_campaigns collection: %w", err)
	}

	rec := core.NewRecord(col)
	rec.Set("title", msg.Title)
	rec.Set("body", msg.Body)
	rec.Set("mode", string(mode))
	rec.Set("recipients", recipients)
	if err := s.app.Save(rec); err != nil {
		return "", err
	}
	return rec.Id, nil
}

func (s *RecordStore) CreateDelivery(ctx context.Context, campaignID, customerID string, st models.DeliveryStatus, errText string) error {
	col, err := s.app.FindCollectionByNameOrId("notification_deliveries")
	if err != nil {
		return fmt.Errorf("find notification_deliveries collection: %w", err)
	}

	rec := core.NewRecord(col)
	rec.Set("campaign", campaignID)
	rec.Set("customer", customerID)
	rec.Set("status", string(st))
	rec.Set("error_text", errText)
	return s.app.Save(rec)
}
