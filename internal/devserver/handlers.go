package devserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvgarcia/taproom/internal/localstore"
	"github.com/mvgarcia/taproom/internal/tables"
	"github.com/mvgarcia/taproom/pkg/db/models"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/money"
)

// Wire payloads mirror the storefront backend's JSON field names so
// the API client cannot tell the two apart.

type productWire struct {
	ID          string  `json:"id"`
	Name        string  `json:"nome"`
	Description string  `json:"descricao"`
	Cost        float64 `json:"custo"`
	Price       float64 `json:"venda"`
	Code        string  `json:"codigo"`
	Stock       int     `json:"estoque"`
	Company     string  `json:"empresa"`
	Category    string  `json:"categoria"`
	Image       string  `json:"imagem"`
	Slug        string  `json:"slug"`
	Available   bool    `json:"is_available"`
}

func toProductWire(p models.Product) productWire {
	return productWire{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Cost:        money.Cents(p.CostCents).Float(),
		Price:       money.Cents(p.PriceCents).Float(),
		Code:        p.Code,
		Stock:       p.Stock,
		Company:     p.CompanyID,
		Category:    p.Category,
		Image:       p.Image,
		Slug:        p.Slug,
		Available:   p.Available,
	}
}

type categoryWire struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
	Slug        string `json:"slug"`
}

type companyWire struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	Address     string `json:"endereco"`
	Phone       string `json:"telefone"`
	CNPJ        string `json:"cnpj"`
	Email       string `json:"email"`
	Responsible string `json:"responsavel"`
	Slug        string `json:"slug"`
}

type invoiceWire struct {
	ID       string  `json:"id"`
	Company  string  `json:"empresa"`
	Number   string  `json:"numero"`
	Amount   float64 `json:"valor"`
	IssuedAt string  `json:"data_emissao"`
	Slug     string  `json:"slug"`
}

type tableItemWire struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"produto_id"`
	Quantity    int     `json:"quantidade"`
	UnitPrice   float64 `json:"preco_unitario"`
	ProductName string  `json:"produto_nome"`
	ProductSlug string  `json:"produto_slug"`
	Slug        string  `json:"slug"`
}

type tableWire struct {
	ID          string          `json:"id"`
	Number      string          `json:"numero"`
	Name        string          `json:"nome"`
	Status      string          `json:"status"`
	Order       int             `json:"pedido"`
	Slug        string          `json:"slug"`
	NotNumeric  bool            `json:"not_numerico"`
	TotalPeople int             `json:"total_pessoas"`
	PeoplePaid  int             `json:"pessoas_pagaram"`
	AmountPaid  float64         `json:"valor_pago"`
	Items       []tableItemWire `json:"items"`
}

func toTableWire(t models.Table) tableWire {
	items := make([]tableItemWire, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, tableItemWire{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			Quantity:    item.Quantity,
			UnitPrice:   money.Cents(item.UnitPriceCents).Float(),
			ProductName: item.ProductName,
			ProductSlug: item.ProductSlug,
			Slug:        item.Slug,
		})
	}
	return tableWire{
		ID:          t.ID.String(),
		Number:      t.Number,
		Name:        t.Name,
		Status:      t.Status.String(),
		Order:       t.OrderNumber,
		Slug:        t.Slug,
		NotNumeric:  t.NotNumeric,
		TotalPeople: t.TotalPeople,
		PeoplePaid:  t.PeoplePaid,
		AmountPaid:  money.Cents(t.PaidCents).Float(),
		Items:       items,
	}
}

type orderItemWire struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"produto_id"`
	ProductName string  `json:"produto_nome"`
	Quantity    int     `json:"quantidade"`
	UnitPrice   float64 `json:"preco_unitario"`
	Slug        string  `json:"slug"`
	ProductSlug string  `json:"produto_slug"`
}

type orderRecord struct {
	ID            string          `json:"id"`
	Date          string          `json:"data"`
	Status        string          `json:"status"`
	Items         []orderItemWire `json:"items"`
	Total         float64         `json:"total"`
	PaymentMethod string          `json:"metodo_pagamento"`
	Slug          string          `json:"slug"`

	origin    string
	tableSlug string
}

// auth

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	user, err := s.store.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, map[string]any{
		"id":        user.ID.String(),
		"name":      user.Name,
		"user_type": user.UserType.String(),
		"slug":      user.Slug,
		"token":     s.issueToken(user),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.dropToken(token)
	}
	writeSuccess(w, map[string]string{"detail": "logged out"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		UserType string `json:"user_type"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	userType, err := enums.ParseUserType(body.UserType)
	if err != nil {
		userType = enums.UserTypeOnline
	}
	user, err := s.store.CreateUser(r.Context(), body.Name, body.Email, body.Password, userType)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeCreated(w, map[string]any{
		"id":        user.ID.String(),
		"name":      user.Name,
		"user_type": user.UserType.String(),
		"slug":      user.Slug,
		"token":     s.issueToken(user),
	})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userForToken(bearerToken(r))
	if !ok {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	writeSuccess(w, map[string]any{
		"id":        user.ID.String(),
		"name":      user.Name,
		"user_type": user.UserType.String(),
		"slug":      user.Slug,
	})
}

// products

type productBody struct {
	Name        string  `json:"nome"`
	Description string  `json:"descricao"`
	Cost        float64 `json:"custo"`
	Price       float64 `json:"venda"`
	Code        string  `json:"codigo"`
	Stock       int     `json:"estoque"`
	Company     string  `json:"empresa"`
	Category    string  `json:"categoria"`
	Image       string  `json:"imagem"`
	Available   bool    `json:"is_available"`
}

func (b productBody) toInput() localstore.ProductInput {
	return localstore.ProductInput{
		Name:        b.Name,
		Description: b.Description,
		Code:        b.Code,
		Cost:        money.FromFloat(b.Cost),
		Price:       money.FromFloat(b.Price),
		Stock:       b.Stock,
		Category:    b.Category,
		CompanyID:   b.Company,
		Image:       b.Image,
		Available:   b.Available,
	}
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	out := make([]productWire, 0, len(products))
	for _, p := range products {
		out = append(out, toProductWire(p))
	}
	writeSuccess(w, out)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.store.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, toProductWire(product))
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	product, err := s.store.CreateProduct(r.Context(), body.toInput())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeCreated(w, toProductWire(product))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	product, err := s.store.UpdateProduct(r.Context(), chi.URLParam(r, "slug"), body.toInput())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, toProductWire(product))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProduct(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleIncrementStock(w http.ResponseWriter, r *http.Request) {
	s.handleStockChange(w, r, s.store.IncrementStock)
}

func (s *Server) handleDecrementStock(w http.ResponseWriter, r *http.Request) {
	s.handleStockChange(w, r, s.store.DecrementStock)
}

func (s *Server) handleStockChange(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, slug string, quantity int) error) {
	var body struct {
		Quantity int `json:"quantidade"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if err := change(r.Context(), chi.URLParam(r, "slug"), body.Quantity); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, map[string]string{"detail": "stock updated"})
}

// categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	out := make([]categoryWire, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryWire{ID: c.ID.String(), Name: c.Name, Description: c.Description, Slug: c.Slug})
	}
	writeSuccess(w, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"nome"`
		Description string `json:"descricao"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	category, err := s.store.CreateCategory(r.Context(), body.Name, body.Description)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeCreated(w, categoryWire{ID: category.ID.String(), Name: category.Name, Description: category.Description, Slug: category.Slug})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"nome"`
		Description string `json:"descricao"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	category, err := s.store.UpdateCategory(r.Context(), chi.URLParam(r, "slug"), body.Name, body.Description)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, categoryWire{ID: category.ID.String(), Name: category.Name, Description: category.Description, Slug: category.Slug})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// companies and invoices

type companyBody struct {
	Name        string `json:"nome"`
	Address     string `json:"endereco"`
	Phone       string `json:"telefone"`
	CNPJ        string `json:"cnpj"`
	Email       string `json:"email"`
	Responsible string `json:"responsavel"`
}

func (b companyBody) toInput() localstore.CompanyInput {
	return localstore.CompanyInput{
		Name:        b.Name,
		Address:     b.Address,
		Phone:       b.Phone,
		CNPJ:        b.CNPJ,
		Email:       b.Email,
		Responsible: b.Responsible,
	}
}

func toCompanyWire(c models.Company) companyWire {
	return companyWire{
		ID:          c.ID.String(),
		Name:        c.Name,
		Address:     c.Address,
		Phone:       c.Phone,
		CNPJ:        c.CNPJ,
		Email:       c.Email,
		Responsible: c.Responsible,
		Slug:        c.Slug,
	}
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	out := make([]companyWire, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyWire(c))
	}
	writeSuccess(w, out)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var body companyBody
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	company, err := s.store.CreateCompany(r.Context(), body.toInput())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeCreated(w, toCompanyWire(company))
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var body companyBody
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	company, err := s.store.UpdateCompany(r.Context(), chi.URLParam(r, "slug"), body.toInput())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, toCompanyWire(company))
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCompany(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices(r.Context())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	out := make([]invoiceWire, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceWire{
			ID:       inv.ID.String(),
			Company:  inv.CompanyID.String(),
			Number:   inv.Number,
			Amount:   money.Cents(inv.AmountCents).Float(),
			IssuedAt: inv.IssuedAt.Format("2006-01-02"),
			Slug:     inv.Slug,
		})
	}
	writeSuccess(w, out)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Company  string  `json:"empresa"`
		Number   string  `json:"numero"`
		Amount   float64 `json:"valor"`
		IssuedAt string  `json:"data_emissao"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	issuedAt, err := time.Parse("2006-01-02", body.IssuedAt)
	if err != nil {
		issuedAt = time.Now()
	}
	invoice, err := s.store.CreateInvoice(r.Context(), body.Company, body.Number, money.FromFloat(body.Amount), issuedAt)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeCreated(w, invoiceWire{
		ID:       invoice.ID.String(),
		Company:  invoice.CompanyID.String(),
		Number:   invoice.Number,
		Amount:   money.Cents(invoice.AmountCents).Float(),
		IssuedAt: invoice.IssuedAt.Format("2006-01-02"),
		Slug:     invoice.Slug,
	})
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteInvoice(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// tables

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListTables(r.Context())
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	out := make([]tableWire, 0, len(list))
	for _, t := range list {
		out = append(out, toTableWire(t))
	}
	writeSuccess(w, out)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, err := s.store.GetTable(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, toTableWire(table))
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"nome"`
		Number     string `json:"numero"`
		NotNumeric bool   `json:"not_numerico"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	table, err := s.store.CreateTable(r.Context(), body.Name, body.Number, body.NotNumeric)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeCreated(w, toTableWire(table))
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTable(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddTableItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID   string `json:"produto_id"`
		Quantity    int    `json:"quantidade"`
		ProductSlug string `json:"produto_slug"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	slug := body.ProductSlug
	if slug == "" {
		id, err := uuid.Parse(body.ProductID)
		if err != nil {
			writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "product reference is required"))
			return
		}
		product, err := s.store.GetProductByID(r.Context(), id)
		if err != nil {
			writeError(r.Context(), s.logger, w, err)
			return
		}
		slug = product.Slug
	}
	if err := s.store.AddTableItem(r.Context(), chi.URLParam(r, "slug"), slug, body.Quantity); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	table, err := s.store.GetTable(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	// The first item opens the check, so the table draws its daily
	// order number right away, not at settlement.
	if table.OrderNumber == 0 && len(table.Items) > 0 {
		number, err := s.sequencer.Next(r.Context(), tables.DayKey(time.Now()))
		if err != nil {
			writeError(r.Context(), s.logger, w, err)
			return
		}
		if err := s.store.AssignOrderNumber(r.Context(), table.Slug, number); err != nil {
			writeError(r.Context(), s.logger, w, err)
			return
		}
		table.OrderNumber = number
	}
	writeSuccess(w, toTableWire(table))
}

func (s *Server) handleRemoveTableItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"produto_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	productID, err := uuid.Parse(body.ProductID)
	if err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
		return
	}
	if err := s.store.RemoveTableItem(r.Context(), chi.URLParam(r, "slug"), productID); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, map[string]string{"detail": "item removed"})
}

func (s *Server) handleRecordTablePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount      float64 `json:"valor"`
		TotalPeople int     `json:"total_pessoas"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	amount := money.FromFloat(body.Amount)
	if err := s.store.RecordPartialPayment(r.Context(), chi.URLParam(r, "slug"), amount, body.TotalPeople); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	table, err := s.store.GetTable(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, toTableWire(table))
}

func (s *Server) handleCancelTableOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.store.CancelTableOrder(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	writeSuccess(w, map[string]string{"detail": "order canceled"})
}

// orders

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]orderRecord, len(s.orders))
	copy(out, s.orders)
	s.mu.Unlock()
	writeSuccess(w, out)
}

func (s *Server) handleSearchOrders(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origem")
	tableSlug := r.URL.Query().Get("mesa_slug")

	s.mu.Lock()
	out := make([]orderRecord, 0, len(s.orders))
	for _, order := range s.orders {
		if origin != "" && order.origin != origin {
			continue
		}
		if tableSlug != "" && order.tableSlug != tableSlug {
			continue
		}
		out = append(out, order)
	}
	s.mu.Unlock()

	writeSuccess(w, out)
}

func (s *Server) handleCreateOrderFromTable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyID     string `json:"empresa_id"`
		PaymentMethod string `json:"metodo_pagamento"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	method, err := enums.ParsePaymentMethod(body.PaymentMethod)
	if err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required"))
		return
	}

	tableSlug := chi.URLParam(r, "slug")
	table, err := s.store.GetTable(r.Context(), tableSlug)
	if err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	if len(table.Items) == 0 {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeStateConflict, "table has no open check"))
		return
	}

	// The check keeps the number stamped when its first item landed.
	number := table.OrderNumber
	if number == 0 {
		number, err = s.sequencer.Next(r.Context(), tables.DayKey(time.Now()))
		if err != nil {
			writeError(r.Context(), s.logger, w, err)
			return
		}
	}

	var totalCents int64
	items := make([]orderItemWire, 0, len(table.Items))
	for _, item := range table.Items {
		totalCents += item.TotalCents
		items = append(items, orderItemWire{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   money.Cents(item.UnitPriceCents).Float(),
			Slug:        item.Slug,
			ProductSlug: item.ProductSlug,
		})
	}

	order := orderRecord{
		ID:            uuid.NewString(),
		Date:          time.Now().Format(time.RFC3339),
		Status:        enums.OrderStatusPending.String(),
		Items:         items,
		Total:         money.Cents(totalCents).Float(),
		PaymentMethod: method.String(),
		Slug:          fmt.Sprintf("pedido-%s-%d", tables.DayKey(time.Now()), number),
		origin:        "fisica",
		tableSlug:     tableSlug,
	}

	if err := s.store.SettleTable(r.Context(), tableSlug); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	writeCreated(w, order)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	next, err := enums.ParseOrderStatus(body.Status)
	if err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "order status is invalid"))
		return
	}

	slug := chi.URLParam(r, "slug")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, order := range s.orders {
		if order.Slug != slug {
			continue
		}
		current, parseErr := enums.ParseOrderStatus(order.Status)
		if parseErr == nil && !current.CanTransitionTo(next) {
			writeError(r.Context(), s.logger, w, pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot move from %s to %s", current, next),
			))
			return
		}
		s.orders[i].Status = next.String()
		writeSuccess(w, s.orders[i])
		return
	}
	writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
}

// stock ledger

func (s *Server) handleStockOutflow(w http.ResponseWriter, r *http.Request) {
	var entries []struct {
		Product   string `json:"produto"`
		Quantity  int    `json:"quantidade"`
		Direction string `json:"tipo"`
	}
	if err := decodeBody(r, &entries); err != nil {
		writeError(r.Context(), s.logger, w, err)
		return
	}
	for _, entry := range entries {
		direction, err := enums.ParseMovementDirection(entry.Direction)
		if err != nil {
			writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeValidation, "movement direction is invalid"))
			return
		}
		slug := entry.Product
		if id, parseErr := uuid.Parse(entry.Product); parseErr == nil {
			product, getErr := s.store.GetProductByID(r.Context(), id)
			if getErr != nil {
				writeError(r.Context(), s.logger, w, getErr)
				return
			}
			slug = product.Slug
		}
		if err := s.store.RecordStockMovement(r.Context(), slug, direction, entry.Quantity); err != nil {
			writeError(r.Context(), s.logger, w, err)
			return
		}
	}
	writeCreated(w, map[string]string{"detail": "movements recorded"})
}
