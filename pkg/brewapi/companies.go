package brewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

type companyPayload struct {
	ID          flexID `json:"id"`
	Name        string `json:"nome"`
	Address     string `json:"endereco"`
	Phone       string `json:"telefone"`
	CNPJ        string `json:"cnpj"`
	Email       string `json:"email"`
	Responsible string `json:"responsavel"`
	Slug        string `json:"slug"`
}

func (p companyPayload) toCompany() Company {
	return Company{
		ID:          p.ID.String(),
		Name:        p.Name,
		Address:     p.Address,
		Phone:       p.Phone,
		CNPJ:        p.CNPJ,
		Email:       p.Email,
		Responsible: p.Responsible,
		Slug:        p.Slug,
	}
}

// CompanyInput carries the writable supplier fields.
type CompanyInput struct {
	Name        string `validate:"required"`
	Address     string
	Phone       string
	CNPJ        string
	Email       string `validate:"omitempty,email"`
	Responsible string
}

func (in CompanyInput) payload() map[string]any {
	return map[string]any{
		"nome":        in.Name,
		"endereco":    in.Address,
		"telefone":    in.Phone,
		"cnpj":        in.CNPJ,
		"email":       in.Email,
		"responsavel": in.Responsible,
	}
}

// ListCompanies fetches all supplier records.
func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var payload []companyPayload
	if err := c.do(ctx, http.MethodGet, "/empresas/", nil, &payload); err != nil {
		return nil, err
	}
	companies := make([]Company, 0, len(payload))
	for _, p := range payload {
		companies = append(companies, p.toCompany())
	}
	return companies, nil
}

// GetCompany fetches one supplier by slug.
func (c *Client) GetCompany(ctx context.Context, slug string) (Company, error) {
	if strings.TrimSpace(slug) == "" {
		return Company{}, pkgerrors.New(pkgerrors.CodeValidation, "company slug is required")
	}
	var payload companyPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/empresas/%s/", url.PathEscape(slug)), nil, &payload); err != nil {
		return Company{}, err
	}
	return payload.toCompany(), nil
}

// CreateCompany registers a supplier.
func (c *Client) CreateCompany(ctx context.Context, in CompanyInput) (Company, error) {
	var payload companyPayload
	if err := c.do(ctx, http.MethodPost, "/empresas/", in.payload(), &payload); err != nil {
		return Company{}, err
	}
	return payload.toCompany(), nil
}

// UpdateCompany replaces the supplier identified by slug.
func (c *Client) UpdateCompany(ctx context.Context, slug string, in CompanyInput) (Company, error) {
	if strings.TrimSpace(slug) == "" {
		return Company{}, pkgerrors.New(pkgerrors.CodeValidation, "company slug is required")
	}
	var payload companyPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/empresas/%s/", url.PathEscape(slug)), in.payload(), &payload); err != nil {
		return Company{}, err
	}
	return payload.toCompany(), nil
}

// DeleteCompany removes the supplier identified by slug.
func (c *Client) DeleteCompany(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "company slug is required")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/empresas/%s/", url.PathEscape(slug)), nil, nil)
}

type invoicePayload struct {
	ID       flexID    `json:"id"`
	Company  flexID    `json:"empresa"`
	Number   string    `json:"numero"`
	Amount   flexCents `json:"valor"`
	IssuedAt string    `json:"data_emissao"`
	Slug     string    `json:"slug"`
}

func (p invoicePayload) toInvoice() Invoice {
	return Invoice{
		ID:       p.ID.String(),
		Company:  p.Company.String(),
		Number:   p.Number,
		Amount:   p.Amount.Cents(),
		IssuedAt: p.IssuedAt,
		Slug:     p.Slug,
	}
}

// InvoiceInput carries the writable nota fiscal fields.
type InvoiceInput struct {
	CompanyID string      `validate:"required"`
	Number    string      `validate:"required"`
	Amount    money.Cents `validate:"gte=0"`
	IssuedAt  string
}

// ListInvoices fetches all supplier invoices.
func (c *Client) ListInvoices(ctx context.Context) ([]Invoice, error) {
	var payload []invoicePayload
	if err := c.do(ctx, http.MethodGet, "/notasfiscais/", nil, &payload); err != nil {
		return nil, err
	}
	invoices := make([]Invoice, 0, len(payload))
	for _, p := range payload {
		invoices = append(invoices, p.toInvoice())
	}
	return invoices, nil
}

// CreateInvoice registers a supplier invoice.
func (c *Client) CreateInvoice(ctx context.Context, in InvoiceInput) (Invoice, error) {
	body := map[string]any{
		"empresa":      in.CompanyID,
		"numero":       in.Number,
		"valor":        in.Amount.Float(),
		"data_emissao": in.IssuedAt,
	}
	var payload invoicePayload
	if err := c.do(ctx, http.MethodPost, "/notasfiscais/", body, &payload); err != nil {
		return Invoice{}, err
	}
	return payload.toInvoice(), nil
}

// DeleteInvoice removes the invoice identified by slug.
func (c *Client) DeleteInvoice(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice slug is required")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notasfiscais/%s/", url.PathEscape(slug)), nil, nil)
}
