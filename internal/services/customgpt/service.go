// File: internal/services/customgpt/service.go
package customgpt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iyunix/go-gptchat/internal/domain"
	"github.com/iyunix/go-gptchat/internal/repository/customgpt"
	"github.com/iyunix/go-gptchat/internal/repository/user"
)

// Logger defines the logging interface used by the persona service
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

var (
	ErrCreatorNotFound = domain.NewError(domain.ErrNotFound, "Creator not found")
	ErrGPTNotFound     = domain.NewError(domain.ErrNotFound, "Custom GPT not found")
	ErrNotCreator      = domain.NewError(domain.ErrForbidden, "Unauthorized")
)

type CreateRequest struct {
	Name         string
	Description  string
	SystemPrompt string
	IsPublic     bool
	CreatorID    string
}

// StarResult mirrors the starred state after a star or unstar call.
type StarResult struct {
	Success bool
	Starred bool
}

type Service struct {
	gpts   customgpt.CustomGPTRepository
	users  user.UserRepository
	logger Logger
}

func NewService(gpts customgpt.CustomGPTRepository, users user.UserRepository, logger Logger) *Service {
	return &Service{gpts: gpts, users: users, logger: logger}
}

// Create validates the persona, stores the creator's display name with it and
// defaults to private.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.CustomGPT, error) {
	name := strings.TrimSpace(req.Name)
	prompt := strings.TrimSpace(req.SystemPrompt)
	if err := domain.ValidateCustomGPT(name, prompt); err != nil {
		return nil, err
	}

	creator, err := s.users.FindByID(ctx, req.CreatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCreatorNotFound
		}
		return nil, err
	}

	gpt := &domain.CustomGPT{
		ID:           domain.NewID(),
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		SystemPrompt: prompt,
		CreatorID:    creator.ID,
		CreatorName:  creator.DisplayName(),
		IsPublic:     req.IsPublic,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.gpts.Create(ctx, gpt)
	if err != nil {
		return nil, err
	}
	s.logger.Info("custom GPT created", "gpt_id", created.ID, "creator_id", creator.ID)
	return created, nil
}

// Get returns a persona visible to viewerID. Private personas of other users
// are reported as not found.
func (s *Service) Get(ctx context.Context, viewerID, id string) (*domain.CustomGPT, error) {
	gpt, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !gpt.IsVisibleTo(viewerID) {
		return nil, ErrGPTNotFound
	}
	if viewerID != "" {
		if u, err := s.users.FindByID(ctx, viewerID); err == nil {
			gpt.IsStarred = u.HasStarredGPT(gpt.ID)
		}
	}
	return gpt, nil
}

func (s *Service) ListMine(ctx context.Context, creatorID string) ([]domain.CustomGPT, error) {
	return s.gpts.FindByCreatorID(ctx, creatorID)
}

// Update applies only the fields set in patch. Creator only.
func (s *Service) Update(ctx context.Context, callerID, id string, patch domain.CustomGPTPatch) (*domain.CustomGPT, error) {
	gpt, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := gpt.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.gpts.Update(ctx, gpt); err != nil {
		return nil, err
	}
	s.logger.Info("custom GPT updated", "gpt_id", id)
	return gpt, nil
}

// Delete removes a persona. Creator only. Stars held by other users are left
// in place and skipped when listed.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	return s.gpts.Delete(ctx, id)
}

// Star adds or removes id from the user's starred set. Both directions are
// idempotent. Starring requires the persona to exist and be visible to the
// user; unstarring does not.
func (s *Service) Star(ctx context.Context, userID, id string, star bool) (*StarResult, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changed bool
	if star {
		gpt, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		if !gpt.IsVisibleTo(userID) {
			return nil, ErrGPTNotFound
		}
		changed = u.StarGPT(id)
	} else {
		changed = u.UnstarGPT(id)
	}

	if changed {
		if err := s.users.UpdateStarredGPTs(ctx, u); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("custom GPT star updated", "user_id", userID, "gpt_id", id, "starred", star, "changed", changed)
	return &StarResult{Success: true, Starred: star}, nil
}

// ListPublic returns every public persona with IsStarred set from the
// viewer's starred set. An empty viewerID marks nothing starred.
func (s *Service) ListPublic(ctx context.Context, viewerID string) ([]domain.CustomGPT, error) {
	gpts, err := s.gpts.FindPublic(ctx)
	if err != nil {
		return nil, err
	}
	if viewerID == "" {
		return gpts, nil
	}
	u, err := s.users.FindByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return gpts, nil
		}
		return nil, err
	}
	for i := range gpts {
		gpts[i].IsStarred = u.HasStarredGPT(gpts[i].ID)
	}
	return gpts, nil
}

// ListStarred returns the user's starred personas that still exist and are
// still visible to them.
func (s *Service) ListStarred(ctx context.Context, userID string) ([]domain.CustomGPT, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	gpts, err := s.gpts.FindByIDs(ctx, u.StarredGPTIDs)
	if err != nil {
		return nil, err
	}
	visible := gpts[:0]
	for _, g := range gpts {
		if g.IsVisibleTo(userID) {
			g.IsStarred = true
			visible = append(visible, g)
		}
	}
	return visible, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.CustomGPT, error) {
	gpt, err := s.gpts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrGPTNotFound
		}
		return nil, err
	}
	return gpt, nil
}

func (s *Service) owned(ctx context.Context, callerID, id string) (*domain.CustomGPT, error) {
	gpt, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !gpt.IsOwnedBy(callerID) {
		s.logger.Warn("custom GPT modification denied", "gpt_id", id, "caller_id", callerID)
		return nil, ErrNotCreator
	}
	return gpt, nil
}
