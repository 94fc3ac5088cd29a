package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvgarcia/taproom/pkg/db/models"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

// ListTables returns every table with its open items.
func (s *Store) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := s.client.DB().WithContext(ctx).
		Preload("Items").
		Order("number asc").
		Find(&tables).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tables")
	}
	return tables, nil
}

// GetTable returns one table by slug.
func (s *Store) GetTable(ctx context.Context, slug string) (models.Table, error) {
	var table models.Table
	err := s.client.DB().WithContext(ctx).
		Preload("Items").
		Where("slug = ?", slug).
		First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Table{}, pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return models.Table{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get table")
	}
	return table, nil
}

// CreateTable registers a mesa; named tabs get a slug from their name.
func (s *Store) CreateTable(ctx context.Context, name, number string, notNumeric bool) (models.Table, error) {
	if strings.TrimSpace(name) == "" {
		return models.Table{}, pkgerrors.New(pkgerrors.CodeValidation, "table name is required")
	}
	table := models.Table{
		Name:       name,
		Number:     number,
		Slug:       slugify(name),
		Status:     enums.TableStatusFree,
		NotNumeric: notNumeric,
	}
	if err := s.client.DB().WithContext(ctx).Create(&table).Error; err != nil {
		return models.Table{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create table")
	}
	return table, nil
}

// DeleteTable removes a mesa. Deleting the last table reseeds the
// default numbered set so the floor never goes empty.
func (s *Store) DeleteTable(ctx context.Context, slug string) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		result := tx.Where("slug = ?", slug).Delete(&models.Table{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}

		var count int64
		if err := tx.Model(&models.Table{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return s.seedDefaultTables(ctx, tx)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete table")
	}
	return nil
}

// AddTableItem puts quantity units of a product on the table's check,
// occupying the table and drawing down the product's stock.
func (s *Store) AddTableItem(ctx context.Context, tableSlug, productSlug string, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Where("slug = ?", tableSlug).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
			}
			return err
		}
		var product models.Product
		if err := tx.Where("slug = ?", productSlug).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}
		if product.Stock < quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").WithDetails(product.Slug)
		}

		var existing models.TableItem
		err := tx.Where("table_id = ? AND product_id = ?", table.ID, product.ID).First(&existing).Error
		switch {
		case err == nil:
			existing.Quantity += quantity
			existing.TotalCents = existing.UnitPriceCents * int64(existing.Quantity)
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := models.TableItem{
				TableID:        table.ID,
				ProductID:      product.ID,
				ProductName:    product.Name,
				ProductSlug:    product.Slug,
				Slug:           fmt.Sprintf("%s-%s", table.Slug, product.Slug),
				Quantity:       quantity,
				UnitPriceCents: product.PriceCents,
				TotalCents:     product.PriceCents * int64(quantity),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"status":   enums.TableStatusOccupied,
			"occupied": true,
		}
		if table.OpenedAt == nil {
			now := time.Now()
			updates["opened_at"] = &now
		}
		return tx.Model(&models.Table{}).Where("id = ?", table.ID).Updates(updates).Error
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add table item")
	}
	return nil
}

// RemoveTableItem drops a product line, returning its units to stock.
// Removing the last line frees the table.
func (s *Store) RemoveTableItem(ctx context.Context, tableSlug string, productID uuid.UUID) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Where("slug = ?", tableSlug).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
			}
			return err
		}
		var item models.TableItem
		if err := tx.Where("table_id = ? AND product_id = ?", table.ID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not on table")
			}
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.TableItem{}).Where("table_id = ?", table.ID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return s.freeTable(tx, table.ID)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove table item")
	}
	return nil
}

// CancelTableOrder voids the open check, restocking every line.
func (s *Store) CancelTableOrder(ctx context.Context, tableSlug string) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Preload("Items").Where("slug = ?", tableSlug).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
			}
			return err
		}
		for _, item := range table.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("table_id = ?", table.ID).Delete(&models.TableItem{}).Error; err != nil {
			return err
		}
		return s.freeTable(tx, table.ID)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel table order")
	}
	return nil
}

// SettleTable closes the table's check after payment: it clears the
// items, frees the table, and deletes temporary named tabs.
func (s *Store) SettleTable(ctx context.Context, tableSlug string) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Where("slug = ?", tableSlug).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
			}
			return err
		}
		if err := tx.Where("table_id = ?", table.ID).Delete(&models.TableItem{}).Error; err != nil {
			return err
		}
		if table.NotNumeric {
			return tx.Delete(&table).Error
		}
		return s.freeTable(tx, table.ID)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle table")
	}
	return nil
}

// AssignOrderNumber stamps the table with its daily order number.
func (s *Store) AssignOrderNumber(ctx context.Context, tableSlug string, number int) error {
	result := s.client.DB().WithContext(ctx).
		Model(&models.Table{}).
		Where("slug = ?", tableSlug).
		Update("order_number", number)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "assign order number")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
	}
	return nil
}

// RecordPartialPayment tracks one settled share of a split check. A
// positive totalPeople also stamps how many ways the check is split.
func (s *Store) RecordPartialPayment(ctx context.Context, tableSlug string, amount money.Cents, totalPeople int) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	updates := map[string]any{
		"people_paid": gorm.Expr("people_paid + 1"),
		"paid_cents":  gorm.Expr("paid_cents + ?", int64(amount)),
	}
	if totalPeople > 0 {
		updates["total_people"] = totalPeople
	}
	result := s.client.DB().WithContext(ctx).
		Model(&models.Table{}).
		Where("slug = ?", tableSlug).
		Updates(updates)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "record partial payment")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
	}
	return nil
}

func (s *Store) freeTable(tx *gorm.DB, tableID uuid.UUID) error {
	return tx.Model(&models.Table{}).Where("id = ?", tableID).Updates(map[string]any{
		"status":       enums.TableStatusFree,
		"occupied":     false,
		"order_number": 0,
		"total_people": 1,
		"people_paid":  0,
		"paid_cents":   0,
		"opened_at":    nil,
	}).Error
}

func slugify(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
