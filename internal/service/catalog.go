package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

// MaxCatalogNameLength bounds category and tag names.
const MaxCatalogNameLength = 100

// CatalogService manages the two shared namespaces snippets are filed under:
// categories and tags.
//
// Both are global. Any authenticated user may create or delete an entry;
// the creator is recorded for display only. Deleting an entry rewrites the
// snippets that reference it (see repository.CategoryRepository and
// repository.TagRepository) and attributes those edits to the deleter.
type CatalogService struct {
	categories repository.CategoryRepository
	tags       repository.TagRepository
	logger     *slog.Logger
}

func NewCatalogService(categories repository.CategoryRepository, tags repository.TagRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		tags:       tags,
		logger:     logger,
	}
}

// defaultCategory is listed first and can be neither created nor deleted.
var defaultCategory = model.Category{ID: model.DefaultCategoryID, Name: model.DefaultCategory}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, owner *model.User) (*model.Category, error) {
	name, err := validCatalogName(name)
	if err != nil {
		return nil, err
	}
	if name == model.DefaultCategory {
		return nil, apperror.Conflict("category", name)
	}

	category := &model.Category{Name: name, CreatedBy: owner.ID, CreatedByName: owner.DisplayName}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Info("category created",
		slog.String("id", category.ID),
		slog.String("name", category.Name),
	)
	return category, nil
}

// ListCategories returns the virtual default category followed by the
// stored ones in name order.
func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	stored, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return append([]model.Category{defaultCategory}, stored...), nil
}

// DeleteCategory deletes a category and moves its snippets to the default
// category. Ownership is not checked.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string, caller *model.User) error {
	id = strings.TrimSpace(id)
	if id == "" || id == model.DefaultCategoryID {
		return apperror.NotFound("category", id)
	}

	if err := s.categories.DeleteCategory(ctx, id, caller.ID); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	s.logger.Info("category deleted",
		slog.String("id", id),
		slog.String("by", caller.ID),
	)
	return nil
}

func (s *CatalogService) CreateTag(ctx context.Context, name string, owner *model.User) (*model.Tag, error) {
	name, err := validCatalogName(name)
	if err != nil {
		return nil, err
	}

	tag := &model.Tag{Name: name, CreatedBy: owner.ID, CreatedByName: owner.DisplayName}
	if err := s.tags.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	s.logger.Info("tag created",
		slog.String("id", tag.ID),
		slog.String("name", tag.Name),
	)
	return tag, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tags.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// DeleteTag deletes a tag and strips it from every snippet carrying it.
// Ownership is not checked.
func (s *CatalogService) DeleteTag(ctx context.Context, id string, caller *model.User) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NotFound("tag", id)
	}

	if err := s.tags.DeleteTag(ctx, id, caller.ID); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}

	s.logger.Info("tag deleted",
		slog.String("id", id),
		slog.String("by", caller.ID),
	)
	return nil
}

func validCatalogName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.MissingField("name")
	}
	if len(name) > MaxCatalogNameLength {
		return "", apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxCatalogNameLength))
	}
	return name, nil
}
