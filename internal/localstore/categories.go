package localstore

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mvgarcia/taproom/pkg/db/models"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

// ListCategories returns every category.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.client.DB().WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return categories, nil
}

// CreateCategory registers a category.
func (s *Store) CreateCategory(ctx context.Context, name, description string) (models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return models.Category{}, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category := models.Category{
		Name:        name,
		Description: description,
		Slug:        slugify(name),
	}
	if err := s.client.DB().WithContext(ctx).Create(&category).Error; err != nil {
		return models.Category{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return category, nil
}

// UpdateCategory replaces the writable fields of a category.
func (s *Store) UpdateCategory(ctx context.Context, slug, name, description string) (models.Category, error) {
	var category models.Category
	err := s.client.DB().WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return models.Category{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get category")
	}
	category.Name = name
	category.Description = description
	if err := s.client.DB().WithContext(ctx).Save(&category).Error; err != nil {
		return models.Category{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}
	return category, nil
}

// DeleteCategory removes a category by slug.
func (s *Store) DeleteCategory(ctx context.Context, slug string) error {
	result := s.client.DB().WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "delete category")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}
