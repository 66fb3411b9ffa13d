// File: internal/repository/customgpt/customgpt_repository.go
package customgpt

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/go-gptchat/internal/domain"
	"gorm.io/gorm"
)

var ErrCustomGPTNotFound = &domain.NotFoundError{Entity: "Custom GPT"}

type gormCustomGPTRepository struct {
	db     *gorm.DB
	logger Logger
}

func NewCustomGPTRepository(db *gorm.DB, logger Logger) CustomGPTRepository {
	return &gormCustomGPTRepository{db: db, logger: logger}
}

func (r *gormCustomGPTRepository) Create(ctx context.Context, gpt *domain.CustomGPT) (*domain.CustomGPT, error) {
	if gpt == nil || gpt.ID == "" || gpt.CreatorID == "" {
		return nil, errors.New("validation failed: custom GPT requires an ID and a creator")
	}
	if err := domain.ValidateCustomGPT(gpt.Name, gpt.SystemPrompt); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(gpt).Error; err != nil {
		r.logger.Error("database error during custom GPT creation", "creator_id", gpt.CreatorID, "error", err)
		return nil, fmt.Errorf("database error creating custom GPT: %w", err)
	}
	r.logger.Info("custom GPT created", "gpt_id", gpt.ID, "creator_id", gpt.CreatorID, "public", gpt.IsPublic)
	return gpt, nil
}

func (r *gormCustomGPTRepository) FindByID(ctx context.Context, id string) (*domain.CustomGPT, error) {
	if id == "" {
		return nil, ErrCustomGPTNotFound
	}
	var gpt domain.CustomGPT
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&gpt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomGPTNotFound
	}
	if err != nil {
		r.logger.Error("custom GPT query failed", "gpt_id", id, "error", err)
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	gpts := []domain.CustomGPT{gpt}
	if err := r.fillCreatorNames(ctx, gpts); err != nil {
		return nil, err
	}
	return &gpts[0], nil
}

func (r *gormCustomGPTRepository) FindByCreatorID(ctx context.Context, creatorID string) ([]domain.CustomGPT, error) {
	return r.list(ctx, "FindByCreatorID", r.db.WithContext(ctx).Where("user_id = ?", creatorID))
}

func (r *gormCustomGPTRepository) FindPublic(ctx context.Context) ([]domain.CustomGPT, error) {
	return r.list(ctx, "FindPublic", r.db.WithContext(ctx).Where("is_public = ?", true))
}

func (r *gormCustomGPTRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.CustomGPT, error) {
	if len(ids) == 0 {
		return []domain.CustomGPT{}, nil
	}
	return r.list(ctx, "FindByIDs", r.db.WithContext(ctx).Where("id IN ?", ids))
}

func (r *gormCustomGPTRepository) list(ctx context.Context, operation string, query *gorm.DB) ([]domain.CustomGPT, error) {
	gpts := []domain.CustomGPT{}
	if err := query.Order("created_at DESC, id DESC").Find(&gpts).Error; err != nil {
		r.logger.Error("custom GPT query failed", "operation", operation, "error", err)
		return nil, fmt.Errorf("database error fetching custom GPTs: %w", err)
	}
	if err := r.fillCreatorNames(ctx, gpts); err != nil {
		return nil, err
	}
	return gpts, nil
}

func (r *gormCustomGPTRepository) Update(ctx context.Context, gpt *domain.CustomGPT) error {
	if err := domain.ValidateCustomGPT(gpt.Name, gpt.SystemPrompt); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&domain.CustomGPT{}).
		Where("id = ?", gpt.ID).
		Updates(map[string]interface{}{
			"name":          gpt.Name,
			"description":   gpt.Description,
			"system_prompt": gpt.SystemPrompt,
			"is_public":     gpt.IsPublic,
		})
	if result.Error != nil {
		r.logger.Error("database error updating custom GPT", "gpt_id", gpt.ID, "error", result.Error)
		return fmt.Errorf("database error updating custom GPT: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCustomGPTNotFound
	}
	return nil
}

func (r *gormCustomGPTRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.CustomGPT{})
	if result.Error != nil {
		r.logger.Error("database error deleting custom GPT", "gpt_id", id, "error", result.Error)
		return fmt.Errorf("database error deleting custom GPT: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCustomGPTNotFound
	}
	r.logger.Info("custom GPT deleted", "gpt_id", id)
	return nil
}

// fillCreatorNames loads all creator names in one query.
func (r *gormCustomGPTRepository) fillCreatorNames(ctx context.Context, gpts []domain.CustomGPT) error {
	if len(gpts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(gpts))
	ids := make([]string, 0, len(gpts))
	for _, g := range gpts {
		if _, ok := seen[g.CreatorID]; !ok {
			seen[g.CreatorID] = struct{}{}
			ids = append(ids, g.CreatorID)
		}
	}

	var users []domain.User
	err := r.db.WithContext(ctx).Select("id", "email", "name").Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		r.logger.Error("database error loading creator names", "error", err)
		return fmt.Errorf("database error loading creator names: %w", err)
	}
	names := make(map[string]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}
	for i := range gpts {
		if name, ok := names[gpts[i].CreatorID]; ok {
			gpts[i].CreatorName = name
		}
	}
	return nil
}
