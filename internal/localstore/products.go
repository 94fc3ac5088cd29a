package localstore

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvgarcia/taproom/pkg/db/models"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Description string
	Code        string
	Cost        money.Cents
	Price       money.Cents
	Stock       int
	Category    string
	CompanyID   string
	Image       string
	Available   bool
}

// ListProducts returns the full catalog.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.client.DB().WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

// GetProduct returns one product by slug.
func (s *Store) GetProduct(ctx context.Context, slug string) (models.Product, error) {
	var product models.Product
	err := s.client.DB().WithContext(ctx).Where("slug = ?", slug).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get product")
	}
	return product, nil
}

// CreateProduct registers a catalog product.
func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Code:        in.Code,
		CostCents:   int64(in.Cost),
		PriceCents:  int64(in.Price),
		Stock:       in.Stock,
		Category:    in.Category,
		CompanyID:   in.CompanyID,
		Image:       in.Image,
		Slug:        slugify(in.Name),
		Available:   in.Available,
	}
	if err := s.client.DB().WithContext(ctx).Create(&product).Error; err != nil {
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	if in.Stock > 0 {
		s.recordMovement(ctx, product.Slug, enums.MovementIn, in.Stock)
	}
	return product, nil
}

// UpdateProduct replaces the writable fields of a product.
func (s *Store) UpdateProduct(ctx context.Context, slug string, in ProductInput) (models.Product, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return models.Product{}, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Code = in.Code
	product.CostCents = int64(in.Cost)
	product.PriceCents = int64(in.Price)
	product.Stock = in.Stock
	product.Category = in.Category
	product.CompanyID = in.CompanyID
	product.Image = in.Image
	product.Available = in.Available
	if err := s.client.DB().WithContext(ctx).Save(&product).Error; err != nil {
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return product, nil
}

// DeleteProduct removes a product by slug.
func (s *Store) DeleteProduct(ctx context.Context, slug string) error {
	result := s.client.DB().WithContext(ctx).Where("slug = ?", slug).Delete(&models.Product{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "delete product")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// IncrementStock returns quantity units to stock and logs the inflow.
func (s *Store) IncrementStock(ctx context.Context, slug string, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	result := s.client.DB().WithContext(ctx).
		Model(&models.Product{}).
		Where("slug = ?", slug).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "increment stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.recordMovement(ctx, slug, enums.MovementIn, quantity)
	return nil
}

// DecrementStock draws quantity units from stock and logs the outflow.
// Stock never goes below zero.
func (s *Store) DecrementStock(ctx context.Context, slug string, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("slug = ?", slug).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}
		if product.Stock < quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").WithDetails(slug)
		}
		return tx.Model(&product).Update("stock", gorm.Expr("stock - ?", quantity)).Error
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
	}
	s.recordMovement(ctx, slug, enums.MovementOut, quantity)
	return nil
}

// GetProductByID returns one product by its row id.
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (models.Product, error) {
	var product models.Product
	err := s.client.DB().WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get product")
	}
	return product, nil
}

// RecordStockMovement appends a ledger entry without changing stock,
// for flows where the draw already happened elsewhere.
func (s *Store) RecordStockMovement(ctx context.Context, productSlug string, direction enums.MovementDirection, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "movement direction is invalid")
	}
	movement := models.StockMovement{
		ProductSlug: productSlug,
		Direction:   direction,
		Quantity:    quantity,
	}
	if err := s.client.DB().WithContext(ctx).Create(&movement).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record stock movement")
	}
	return nil
}

// ListStockMovements returns the ledger for one product, newest first.
func (s *Store) ListStockMovements(ctx context.Context, productSlug string) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.client.DB().WithContext(ctx).
		Where("product_slug = ?", productSlug).
		Order("recorded_at desc").
		Find(&movements).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock movements")
	}
	return movements, nil
}

// recordMovement appends a ledger entry; a failed entry never blocks
// the stock change it describes.
func (s *Store) recordMovement(ctx context.Context, slug string, direction enums.MovementDirection, quantity int) {
	movement := models.StockMovement{
		ProductSlug: slug,
		Direction:   direction,
		Quantity:    quantity,
	}
	if err := s.client.DB().WithContext(ctx).Create(&movement).Error; err != nil {
		s.logger.Warn(ctx, "failed to record stock movement")
	}
}
