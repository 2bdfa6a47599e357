package bookhaven

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how an order is paid.
type PaymentMethod string

// Accepted payment methods.
const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentOMT        PaymentMethod = "omt"
	PaymentCash       PaymentMethod = "cash"
)

// PaymentMethods lists the accepted payment methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentPayPal, PaymentOMT, PaymentCash}

// Valid reports whether p is an accepted payment method.
func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// Label returns the human-readable name of the payment method.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCreditCard:
		return "Credit Card"
	case PaymentPayPal:
		return "PayPal"
	case PaymentOMT:
		return "OMT"
	case PaymentCash:
		return "Cash"
	}
	return string(p)
}

// Customer holds the contact details captured on the order form.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// Order represents a submitted book order.
type Order struct {
	ID        string          `json:"id"`
	Items     []OrderItem     `json:"items"`
	Customer  Customer        `json:"customer"`
	Delivery  bool            `json:"delivery"`
	Payment   PaymentMethod   `json:"payment"`
	Feedback  string          `json:"feedback,omitempty"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderItem is a single priced line of an order.
type OrderItem struct {
	BookID    string          `json:"bookId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Validate returns an error if the order contains invalid fields.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return Errorf(EINVALID, "please select at least one book")
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return Errorf(EINVALID, "quantity for %q must be at least 1", item.Title)
		}
	}
	if o.Customer.Name == "" {
		return Errorf(EINVALID, "customer name required")
	}
	if o.Customer.Email == "" {
		return Errorf(EINVALID, "customer email required")
	}
	if o.Customer.Phone == "" {
		return Errorf(EINVALID, "customer phone required")
	}
	if o.Customer.Location == "" {
		return Errorf(EINVALID, "customer location required")
	}
	if !o.Payment.Valid() {
		return Errorf(EINVALID, "unsupported payment method %q", o.Payment)
	}
	return nil
}

// OrderSelection is a book chosen on the order form.
// BookID is preferred; Title is used when BookID is empty.
type OrderSelection struct {
	BookID   string `json:"bookId"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is an unpriced order as submitted by a customer.
type OrderRequest struct {
	Selections []OrderSelection `json:"selections"`
	Customer   Customer         `json:"customer"`
	Delivery   bool             `json:"delivery"`
	Payment    PaymentMethod    `json:"payment"`
	Feedback   string           `json:"feedback"`
}

// PriceOrder builds an order from req, pricing every selection from catalog.
// Client-supplied prices are never trusted. Repeated selections of the same
// book are merged. The returned order is validated.
func PriceOrder(catalog []*Book, req OrderRequest) (*Order, error) {
	byID := make(map[string]*Book, len(catalog))
	byTitle := make(map[string]*Book, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
		if _, ok := byTitle[b.Title]; !ok {
			byTitle[b.Title] = b
		}
	}

	order := &Order{
		Customer: req.Customer,
		Delivery: req.Delivery,
		Payment:  req.Payment,
		Feedback: req.Feedback,
		Total:    decimal.Zero,
	}

	index := make(map[string]int)
	for _, sel := range req.Selections {
		book, ok := byID[sel.BookID]
		if sel.BookID == "" {
			book, ok = byTitle[sel.Title]
		}
		if !ok {
			name := sel.BookID
			if name == "" {
				name = sel.Title
			}
			return nil, Errorf(EINVALID, "book %q is not in the catalog", name)
		}
		if !book.HasPrice() {
			return nil, Errorf(EINVALID, "book %q has no price", book.Title)
		}
		if sel.Quantity < 1 {
			return nil, Errorf(EINVALID, "quantity for %q must be at least 1", book.Title)
		}

		if i, ok := index[book.ID]; ok {
			order.Items[i].Quantity += sel.Quantity
			continue
		}
		index[book.ID] = len(order.Items)
		order.Items = append(order.Items, OrderItem{
			BookID:    book.ID,
			Title:     book.Title,
			UnitPrice: book.Price.Decimal,
			Quantity:  sel.Quantity,
		})
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Total = order.Total.Add(item.Subtotal)
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// OrderService represents a service for managing orders.
type OrderService interface {
	// CreateOrder persists a new order, assigning its ID and creation time.
	CreateOrder(ctx context.Context, order *Order) error

	// FindOrderByID retrieves an order by ID.
	// Returns ENOTFOUND if order does not exist.
	FindOrderByID(ctx context.Context, id string) (*Order, error)

	// FindOrders retrieves orders matching the filter, newest first.
	FindOrders(ctx context.Context, filter OrderFilter) ([]*Order, error)
}

// OrderFilter represents a filter for FindOrders.
type OrderFilter struct {
	ID    *string `json:"id"`
	Email *string `json:"email"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
