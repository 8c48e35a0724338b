package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/auth"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/repository"
)

// Demo account created by Seed. For local development only.
const (
	DemoEmail    = "test@example.com"
	DemoPassword = "password123"
)

var (
	demoCategories = []string{"Common Queries", "Reports", "Data Cleanup", "System Admin"}
	demoTags       = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "JOIN", "SUBQUERY"}
)

// Seeder fills an empty database with a demo user and some catalog entries.
type Seeder struct {
	users      repository.UserRepository
	snippets   repository.SnippetRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	passwords  *auth.PasswordService
	logger     *slog.Logger
}

func NewSeeder(
	users repository.UserRepository,
	snippets repository.SnippetRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		users:      users,
		snippets:   snippets,
		categories: categories,
		tags:       tags,
		passwords:  passwords,
		logger:     logger,
	}
}

// Seed is idempotent: if the demo user already exists it does nothing and
// reports false. Catalog names that are already taken are skipped.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	_, err := s.users.GetUserByEmail(ctx, DemoEmail)
	if err == nil {
		s.logger.Debug("demo data already present")
		return false, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return false, fmt.Errorf("seed: looking up demo user: %w", err)
	}

	hash, err := s.passwords.Hash(DemoPassword)
	if err != nil {
		return false, fmt.Errorf("seed: hashing demo password: %w", err)
	}
	avatar := "https://ui-avatars.com/api/?name=Test+User"
	user := &model.User{
		Email:        DemoEmail,
		PasswordHash: hash,
		DisplayName:  "Test User",
		AvatarURL:    &avatar,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return false, fmt.Errorf("seed: creating demo user: %w", err)
	}

	for _, name := range demoCategories {
		err := s.categories.CreateCategory(ctx, &model.Category{Name: name, CreatedBy: user.ID})
		if err != nil && !errors.Is(err, apperror.ErrConflict) {
			return false, fmt.Errorf("seed: creating category %q: %w", name, err)
		}
	}
	for _, name := range demoTags {
		err := s.tags.CreateTag(ctx, &model.Tag{Name: name, CreatedBy: user.ID})
		if err != nil && !errors.Is(err, apperror.ErrConflict) {
			return false, fmt.Errorf("seed: creating tag %q: %w", name, err)
		}
	}

	example := &model.Snippet{
		Title:     "List active users",
		Content:   `SELECT id, name, email, created_at FROM users WHERE status = 'active' LIMIT 10;`,
		Category:  demoCategories[0],
		Tags:      []string{"SELECT", "LIMIT"},
		Notes:     "Active users, first 10 rows",
		CreatedBy: user.ID,
		UpdatedBy: user.ID,
	}
	if err := s.snippets.Create(ctx, example); err != nil {
		return false, fmt.Errorf("seed: creating example snippet: %w", err)
	}

	s.logger.Info("demo data seeded",
		slog.String("email", DemoEmail),
		slog.Int("categories", len(demoCategories)),
		slog.Int("tags", len(demoTags)),
	)
	return true, nil
}
