package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fwojciec/bookhaven"
)

// orderForm is the order form as submitted by the browser.
type orderForm struct {
	Books      []string       `form:"selected_books" validate:"required,min=1,dive,required"`
	Quantities map[string]int `form:"-" validate:"-"`
	Name       string         `form:"name" validate:"required,max=100"`
	Email      string         `form:"email" validate:"required,email,max=254"`
	Phone      string         `form:"phone" validate:"required,max=40"`
	Location   string         `form:"location" validate:"required,max=200"`
	Delivery   string         `form:"delivery" validate:"required,oneof=yes no"`
	Payment    string         `form:"payment" validate:"required,oneof=credit_card paypal omt cash"`
	Feedback   string         `form:"feedback" validate:"max=2000"`
}

// parseOrderForm reads the order form from r. Quantity fields are named
// quantity_<book id>; a missing quantity means one copy.
func parseOrderForm(r *http.Request) (orderForm, []fieldError) {
	form := orderForm{
		Books:      r.PostForm["selected_books"],
		Quantities: make(map[string]int),
		Name:       strings.TrimSpace(r.PostFormValue("name")),
		Email:      strings.TrimSpace(r.PostFormValue("email")),
		Phone:      strings.TrimSpace(r.PostFormValue("phone")),
		Location:   strings.TrimSpace(r.PostFormValue("location")),
		Delivery:   r.PostFormValue("delivery"),
		Payment:    r.PostFormValue("payment"),
		Feedback:   strings.TrimSpace(r.PostFormValue("feedback")),
	}

	var errs []fieldError
	for _, id := range form.Books {
		raw := strings.TrimSpace(r.PostFormValue("quantity_" + id))
		if raw == "" {
			form.Quantities[id] = 1
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, fieldError{Field: "quantity_" + id, Message: "quantity must be a whole number of at least 1"})
			continue
		}
		form.Quantities[id] = n
	}

	errs = append(errs, validateStruct(form)...)
	return form, errs
}

// request converts a validated form into an order request.
func (f orderForm) request() bookhaven.OrderRequest {
	req := bookhaven.OrderRequest{
		Customer: bookhaven.Customer{
			Name:     f.Name,
			Email:    f.Email,
			Phone:    f.Phone,
			Location: f.Location,
		},
		Delivery: f.Delivery == "yes",
		Payment:  bookhaven.PaymentMethod(f.Payment),
		Feedback: f.Feedback,
	}
	for _, id := range f.Books {
		req.Selections = append(req.Selections, bookhaven.OrderSelection{
			BookID:   id,
			Quantity: f.Quantities[id],
		})
	}
	return req
}

func (s *Server) handleOrderForm(w http.ResponseWriter, r *http.Request) {
	books, err := s.Catalog.Books(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "order", newOrderView(books, orderForm{}, nil))
}

func (s *Server) handleOrderSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, bookhaven.Errorf(bookhaven.EINVALID, "invalid form submission"))
		return
	}

	books, err := s.Catalog.Books(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	form, errs := parseOrderForm(r)
	if len(errs) > 0 {
		s.render(w, r, http.StatusUnprocessableEntity, "order", newOrderView(books, form, errs))
		return
	}

	order, err := bookhaven.PriceOrder(books, form.request())
	if err != nil {
		if bookhaven.ErrorCode(err) == bookhaven.EINVALID {
			errs = []fieldError{{Message: bookhaven.ErrorMessage(err)}}
			s.render(w, r, http.StatusUnprocessableEntity, "order", newOrderView(books, form, errs))
			return
		}
		s.renderError(w, r, err)
		return
	}

	if err := s.Orders.CreateOrder(r.Context(), order); err != nil {
		s.renderError(w, r, err)
		return
	}

	s.logger().InfoContext(r.Context(), "order placed",
		"order_id", order.ID,
		"items", len(order.Items),
		"total", order.Total.StringFixed(2))
	s.render(w, r, http.StatusOK, "thanks", newThanksView(order))
}
