package service

import (
	"context"
	"fmt"

	"github.com/meninojhony/modec-challenger/model"
)

// CategoryService owns category rules: unique names, and no deletion while
// contracts still reference the category.
type CategoryService struct {
	repo Repository
}

func NewCategoryService(repo Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category with id %d", ErrNotFound, id)
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, name, description string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	existing, err := s.repo.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: category '%s' already exists", ErrConflict, name)
	}

	category := &model.Category{Name: name, Description: description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, name, description *string) (*model.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil && *name != category.Name {
		existing, err := s.repo.GetCategoryByName(ctx, *name)
		if err != nil {
			return nil, fmt.Errorf("check category name: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%w: category '%s' already exists", ErrConflict, *name)
		}
		category.Name = *name
	}
	if description != nil {
		category.Description = *description
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountContractsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count contracts in category: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category has %d associated contracts", ErrConflict, count)
	}

	if _, err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
