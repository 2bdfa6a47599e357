package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/fwojciec/bookhaven"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// chartColors are the bar colors of the rating chart, one per rating.
var chartColors = []string{"#ff595e", "#ffca3a", "#8ac926", "#1982c4", "#6a4c93"}

type indexView struct {
	Books       []bookCard
	Stats       bookhaven.RatingStats
	ChartLabels []int
	ChartValues []int
	ChartColors []string
}

type bookCard struct {
	Title           string
	ImageURL        string
	Price           string
	Rating          string
	Recommendations []string
}

type orderView struct {
	Books          []orderLine
	Form           orderForm
	Errors         []fieldError
	PaymentMethods []paymentOption
}

type orderLine struct {
	ID       string
	Title    string
	Price    string
	Selected bool
	Quantity int
}

type paymentOption struct {
	Value string
	Label string
}

type thanksView struct {
	OrderID  string
	Total    string
	Feedback string
	Items    []thanksItem
}

type thanksItem struct {
	Title    string
	Quantity int
	Subtotal string
}

type errorView struct {
	Message string
}

func newIndexView(books []*bookhaven.Book, recs []bookhaven.Recommendation) indexView {
	byID := make(map[string][]string, len(recs))
	for _, rec := range recs {
		byID[rec.BookID] = rec.Titles()
	}

	stats := bookhaven.ComputeRatingStats(books)
	view := indexView{
		Books:       make([]bookCard, len(books)),
		Stats:       stats,
		ChartLabels: stats.Labels(),
		ChartValues: stats.Values(),
		ChartColors: chartColors,
	}
	for i, b := range books {
		view.Books[i] = bookCard{
			Title:           b.Title,
			ImageURL:        b.ImageURL,
			Price:           formatPrice(b.Price),
			Rating:          formatRating(b.Rating),
			Recommendations: byID[b.ID],
		}
	}
	return view
}

// newOrderView lists every priced book, carrying over the submitted form.
func newOrderView(books []*bookhaven.Book, form orderForm, errs []fieldError) orderView {
	selected := make(map[string]bool, len(form.Books))
	for _, id := range form.Books {
		selected[id] = true
	}

	if form.Delivery == "" {
		form.Delivery = "yes"
	}

	view := orderView{Form: form, Errors: errs}
	for _, b := range books {
		if !b.HasPrice() {
			continue
		}
		qty := form.Quantities[b.ID]
		if qty < 1 {
			qty = 1
		}
		view.Books = append(view.Books, orderLine{
			ID:       b.ID,
			Title:    b.Title,
			Price:    b.Price.Decimal.StringFixed(2),
			Selected: selected[b.ID],
			Quantity: qty,
		})
	}
	for _, p := range bookhaven.PaymentMethods {
		view.PaymentMethods = append(view.PaymentMethods, paymentOption{Value: string(p), Label: p.Label()})
	}
	return view
}

func newThanksView(order *bookhaven.Order) thanksView {
	view := thanksView{
		OrderID:  order.ID,
		Total:    order.Total.StringFixed(2),
		Feedback: order.Feedback,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, thanksItem{
			Title:    item.Title,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal.StringFixed(2),
		})
	}
	return view
}

func formatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return "n/a"
	}
	return "$" + p.Decimal.StringFixed(2)
}

func formatRating(r int) string {
	if r == 0 {
		return "unrated"
	}
	return strconv.Itoa(r)
}

// render executes the named template into a buffer before writing, so a
// template failure still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger().ErrorContext(r.Context(), "render template",
			"template", name, "error", err)
		http.Error(w, "Internal error.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := bookhaven.ErrorCode(err)
	message := bookhaven.ErrorMessage(err)
	switch code {
	case bookhaven.EINTERNAL:
		s.logger().ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
	case bookhaven.EUNAVAILABLE:
		message = "The bookstore catalog is unavailable right now. Please try again shortly."
	}
	s.render(w, r, errorStatus(code), "error", errorView{Message: message})
}
