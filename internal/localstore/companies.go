package localstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mvgarcia/taproom/pkg/db/models"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

// CompanyInput carries the writable supplier fields.
type CompanyInput struct {
	Name        string
	Address     string
	Phone       string
	CNPJ        string
	Email       string
	Responsible string
}

// ListCompanies returns every supplier with its invoices.
func (s *Store) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	err := s.client.DB().WithContext(ctx).
		Preload("Invoices").
		Order("name asc").
		Find(&companies).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list companies")
	}
	return companies, nil
}

// CreateCompany registers a supplier.
func (s *Store) CreateCompany(ctx context.Context, in CompanyInput) (models.Company, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Company{}, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	company := models.Company{
		Name:        in.Name,
		Address:     in.Address,
		Phone:       in.Phone,
		CNPJ:        in.CNPJ,
		Email:       in.Email,
		Responsible: in.Responsible,
		Slug:        slugify(in.Name),
	}
	if err := s.client.DB().WithContext(ctx).Create(&company).Error; err != nil {
		return models.Company{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create company")
	}
	return company, nil
}

// UpdateCompany replaces the writable fields of a supplier.
func (s *Store) UpdateCompany(ctx context.Context, slug string, in CompanyInput) (models.Company, error) {
	var company models.Company
	err := s.client.DB().WithContext(ctx).Where("slug = ?", slug).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Company{}, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return models.Company{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get company")
	}
	company.Name = in.Name
	company.Address = in.Address
	company.Phone = in.Phone
	company.CNPJ = in.CNPJ
	company.Email = in.Email
	company.Responsible = in.Responsible
	if err := s.client.DB().WithContext(ctx).Save(&company).Error; err != nil {
		return models.Company{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update company")
	}
	return company, nil
}

// DeleteCompany removes a supplier and, via cascade, its invoices.
func (s *Store) DeleteCompany(ctx context.Context, slug string) error {
	result := s.client.DB().WithContext(ctx).Where("slug = ?", slug).Delete(&models.Company{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "delete company")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
	}
	return nil
}

// CreateInvoice records a supplier nota fiscal.
func (s *Store) CreateInvoice(ctx context.Context, companySlug, number string, amount money.Cents, issuedAt time.Time) (models.Invoice, error) {
	var company models.Company
	err := s.client.DB().WithContext(ctx).Where("slug = ?", companySlug).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Invoice{}, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return models.Invoice{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get company")
	}

	invoice := models.Invoice{
		CompanyID:   company.ID,
		Number:      number,
		AmountCents: int64(amount),
		IssuedAt:    issuedAt,
		Slug:        slugify(company.Slug + "-" + number),
	}
	if err := s.client.DB().WithContext(ctx).Create(&invoice).Error; err != nil {
		return models.Invoice{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create invoice")
	}
	return invoice, nil
}

// ListInvoices returns every nota fiscal.
func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.client.DB().WithContext(ctx).Order("issued_at desc").Find(&invoices).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list invoices")
	}
	return invoices, nil
}

// DeleteInvoice removes a nota fiscal by slug.
func (s *Store) DeleteInvoice(ctx context.Context, slug string) error {
	result := s.client.DB().WithContext(ctx).Where("slug = ?", slug).Delete(&models.Invoice{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "delete invoice")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	return nil
}
