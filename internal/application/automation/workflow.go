package automation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	"golang.org/x/sync/errgroup"
)

type Action string

const (
	ActionDND    Action = "DND"
	ActionDelete Action = "DELETE"
)

// actionConcurrency bounds the per-event contact fan-out.
const actionConcurrency = 5

// WorkflowEvent is the automation webhook body. Only the triggering
// contact's id and first name and the owning location are consumed;
// the rest of the upstream payload is ignored.
type WorkflowEvent struct {
	ContactID string           `json:"contact_id"`
	FirstName string           `json:"first_name"`
	Location  WorkflowLocation `json:"location"`
}

type WorkflowLocation struct {
	ID string `json:"id"`
}

// Result counts the contacts the action was applied to. The triggering
// contact is skipped and counts in neither bucket.
type Result struct {
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
}

type tokenRefresher interface {
	RefreshLocationToken(ctx context.Context, locationID string) (tenant.Location, error)
}

type contactActor interface {
	SearchContacts(ctx context.Context, accessToken, locationID, firstNameLower string) ([]string, error)
	UpdateContactDND(ctx context.Context, accessToken, contactID string) error
	DeleteContact(ctx context.Context, accessToken, contactID string) error
}

// WorkflowService applies a bulk action to every contact sharing the
// triggering contact's first name, except the triggering contact
// itself.
type WorkflowService struct {
	auth tokenRefresher
	crm  contactActor
	log  *slog.Logger
}

func NewWorkflowService(auth tokenRefresher, crm contactActor, logger *slog.Logger) *WorkflowService {
	return &WorkflowService{auth: auth, crm: crm, log: logger}
}

// Execute refreshes the location token, searches matching contacts by
// lowercased first name, and applies the action concurrently.
// Per-contact failures are counted, never fatal; search and token
// failures abort the whole run.
func (s *WorkflowService) Execute(ctx context.Context, event WorkflowEvent, action Action) (Result, error) {
	location, err := s.auth.RefreshLocationToken(ctx, event.Location.ID)
	if err != nil {
		return Result{}, fmt.Errorf("refresh location token: %w", err)
	}

	contactIDs, err := s.crm.SearchContacts(ctx, location.AccessToken, event.Location.ID, strings.ToLower(event.FirstName))
	if err != nil {
		return Result{}, fmt.Errorf("search contacts: %w", err)
	}

	var success, failure atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(actionConcurrency)
	for _, contactID := range contactIDs {
		if contactID == event.ContactID {
			continue
		}
		contactID := contactID
		g.Go(func() error {
			if err := s.apply(ctx, action, location.AccessToken, contactID); err != nil {
				s.log.Error("apply workflow action failed",
					"action", string(action), "contact_id", contactID, "err", err)
				failure.Add(1)
				return nil
			}
			success.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := Result{Success: success.Load(), Failure: failure.Load()}
	s.log.Info("workflow action applied",
		"action", string(action),
		"location_id", event.Location.ID,
		"success", result.Success,
		"failure", result.Failure,
	)
	return result, nil
}

func (s *WorkflowService) apply(ctx context.Context, action Action, accessToken, contactID string) error {
	if action == ActionDelete {
		return s.crm.DeleteContact(ctx, accessToken, contactID)
	}
	return s.crm.UpdateContactDND(ctx, accessToken, contactID)
}
