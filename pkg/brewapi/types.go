package brewapi

import (
	"time"

	"github.com/mvgarcia/taproom/pkg/enums"
	"github.com/mvgarcia/taproom/pkg/money"
)

// Product is a catalog entry as the frontend sees it.
type Product struct {
	ID          string
	Name        string
	Description string
	Code        string
	Cost        money.Cents
	Price       money.Cents
	Stock       int
	Category    string
	CompanyID   string
	Image       string
	Slug        string
	Available   bool
}

// Category groups catalog products.
type Category struct {
	ID          string
	Name        string
	Description string
	Slug        string
}

// Company is a supplier with optional invoice records.
type Company struct {
	ID          string
	Name        string
	Address     string
	Phone       string
	CNPJ        string
	Email       string
	Responsible string
	Slug        string
}

// Invoice is a supplier nota fiscal.
type Invoice struct {
	ID       string
	Company  string
	Number   string
	Amount   money.Cents
	IssuedAt string
	Slug     string
}

// CartItem is one line of the shopper's cart snapshot.
type CartItem struct {
	ProductID   string
	Name        string
	UnitPrice   money.Cents
	Quantity    int
	ProductSlug string
	Slug        string
	CompanyID   string
}

// Total is the line total derived from the snapshot, never stored.
func (i CartItem) Total() money.Cents {
	return i.UnitPrice.Mul(i.Quantity)
}

// OrderItem is one line of a table or delivered order.
type OrderItem struct {
	ID          string
	ProductID   string
	Name        string
	Quantity    int
	UnitPrice   money.Cents
	Total       money.Cents
	Slug        string
	ProductSlug string
	CompanyID   string
}

// Table mirrors a mesa snapshot from the backend.
type Table struct {
	ID          string
	Name        string
	Number      string
	Slug        string
	Occupied    bool
	Status      enums.TableStatus
	OrderNumber int
	NotNumeric  bool
	TotalPeople int
	PeoplePaid  int
	AmountPaid  money.Cents
	Items       []OrderItem
}

// Total sums the line totals of the open order.
func (t Table) Total() money.Cents {
	var total money.Cents
	for _, item := range t.Items {
		total += item.Total
	}
	return total
}

// Customer holds delivery details for an online order.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// Order is a pedido snapshot.
type Order struct {
	ID            string
	Date          string
	Status        enums.OrderStatus
	Items         []OrderItem
	Total         money.Cents
	PaymentMethod enums.PaymentMethod
	Customer      *Customer
	Slug          string
}

// FavoriteProduct is one entry of the shopper's favorites.
type FavoriteProduct struct {
	ID          string
	Name        string
	Price       money.Cents
	Image       string
	Description string
}

// Review is a product review; the backend keeps at most one per
// (user, product) pair.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
	Date      string
	Slug      string
}

// User is the authenticated account snapshot returned by login.
type User struct {
	ID       string
	Email    string
	Name     string
	UserType enums.UserType
	Slug     string
	Token    string
}

// StockMovement is one entry of the backend stock ledger.
type StockMovement struct {
	ID         string
	CompanyID  string
	ProductID  string
	Quantity   int
	Direction  enums.MovementDirection
	RecordedAt time.Time
}
