// Package agents handles the optional agent-code step that precedes the
// registration form when the wizard runs in agent mode.
package agents

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/internal/services/sessions"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/Jidetireni/firstcare-registration/pkg/firstcare"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/Jidetireni/firstcare-registration/pkg/metrics"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

const (
	cacheSize     = 256
	lookupTimeout = 15 * time.Second
)

var (
	_ Backend      = (*firstcare.Client)(nil)
	_ SessionStore = (*sessions.Session)(nil)
)

type Backend interface {
	ValidateAgentCode(ctx context.Context, code string) (*firstcare.AgentInfo, error)
}

type SessionStore interface {
	Load(ctx context.Context, id uuid.UUID) (*wizard.Store, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*wizard.Store) error) (*wizard.Store, error)
}

type Agents struct {
	Sessions SessionStore
	Backend  Backend
	Metrics  *metrics.Metrics
	Logger   *logger.Logger

	cache *lru.Cache // code -> *firstcare.AgentInfo
	group singleflight.Group
}

func New(sessionStore SessionStore, backend Backend, m *metrics.Metrics, log *logger.Logger) (*Agents, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Agents{
		Sessions: sessionStore,
		Backend:  backend,
		Metrics:  m,
		Logger:   log,
		cache:    cache,
	}, nil
}

// Lookup checks an agent code and records the agent on the draft when it is
// valid. It never moves the wizard; Continue does.
func (a *Agents) Lookup(ctx context.Context, id uuid.UUID, input dto.AgentCodeInput) (*dto.AgentLookup, error) {
	code := strings.ToUpper(strings.TrimSpace(input.AgentCode))
	result := &dto.AgentLookup{Code: code}

	store, err := a.Sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireGate(store); err != nil {
		return nil, err
	}

	var info *firstcare.AgentInfo
	switch {
	case len(code) < constants.AgentCodeMinLength:
		result.Status = dto.AgentLookupTooShort
	default:
		info, err = a.resolve(ctx, code)
		switch {
		case errors.Is(err, firstcare.ErrAgentNotFound):
			result.Status = dto.AgentLookupNotFound
		case err != nil:
			a.Logger.Error().Err(err).Str("agent_code", code).Msg("agent code lookup failed")
			return nil, toAPIError(err)
		default:
			result.Status = dto.AgentLookupValid
		}
	}
	a.Metrics.IncAgentLookup(string(result.Status))

	store, err = a.Sessions.Update(ctx, id, func(store *wizard.Store) error {
		if err := requireGate(store); err != nil {
			return err
		}
		if info == nil {
			store.Merge(wizard.Patch{AgentCode: lo.ToPtr(""), AgentName: lo.ToPtr("")})
			return nil
		}
		store.Merge(wizard.Patch{
			AgentCode: lo.ToPtr(code),
			AgentName: lo.ToPtr(info.AgentName),
			Zone:      lo.EmptyableToPtr(info.Zone),
			LGA:       lo.EmptyableToPtr(info.LGA),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if info != nil {
		result.Agent = &dto.AgentInfo{AgentName: info.AgentName, Zone: info.Zone, LGA: info.LGA}
	}
	result.State = sessions.ToState(id, store)
	return result, nil
}

// resolve asks the agent directory about code. Concurrent lookups of the same
// code share one request and valid codes are remembered. The shared request
// is detached from the caller that started it, so one client going away does
// not fail the others.
func (a *Agents) resolve(ctx context.Context, code string) (*firstcare.AgentInfo, error) {
	if v, ok := a.cache.Get(code); ok {
		return v.(*firstcare.AgentInfo), nil
	}

	v, err, _ := a.group.Do(code, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		info, err := a.Backend.ValidateAgentCode(ctx, code)
		if err != nil {
			return nil, err
		}
		a.cache.Add(code, info)
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*firstcare.AgentInfo), nil
}

// Continue leaves the agent gate for the first form step once an agent is
// recorded.
func (a *Agents) Continue(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	store, err := a.Sessions.Update(ctx, id, func(store *wizard.Store) error {
		if err := requireGate(store); err != nil {
			return err
		}
		if !store.Data().HasAgent() {
			return svc.BadRequest("A valid agent code is required", wizard.FieldError{
				Field:   "agent_code",
				Message: "agent_code must be validated before continuing",
			})
		}
		store.JumpTo(wizard.Form(wizard.StepPersonalInfo))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions.ToState(id, store), nil
}

// Change returns an agent-mode session to the gate from any form step. The
// draft, including the recorded agent, is kept.
func (a *Agents) Change(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	store, err := a.Sessions.Update(ctx, id, func(store *wizard.Store) error {
		if store.Mode() != wizard.EntryAgent {
			return svc.Conflict("Agent codes are not used in this session")
		}
		if store.Complete() {
			return svc.Conflict("Registration is already complete")
		}
		if store.IsLoading() {
			return svc.Conflict("Registration is being submitted")
		}
		if store.Submitted() {
			return svc.Conflict("Registration has already been sent; only the submission can be retried")
		}
		if store.Position().Kind() != wizard.KindForm {
			return svc.Conflict("The agent can only be changed from the registration form")
		}
		store.JumpTo(wizard.AgentGate())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions.ToState(id, store), nil
}

func requireGate(store *wizard.Store) error {
	if store.Position().Kind() != wizard.KindAgentGate {
		return svc.Conflict("Agent code can only be entered before the registration form")
	}
	return nil
}

func toAPIError(err error) *svc.APIError {
	var apiErr *firstcare.APIError
	if errors.As(err, &apiErr) {
		return &svc.APIError{Status: http.StatusBadGateway, Message: apiErr.Message}
	}
	return &svc.APIError{Status: http.StatusBadGateway, Message: "Agent code could not be verified. Please try again."}
}
