package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Mariosyian/marketplace/internal/archive"
	"github.com/Mariosyian/marketplace/internal/cart"
	"github.com/Mariosyian/marketplace/internal/checkout"
	"github.com/Mariosyian/marketplace/internal/domain"
	"github.com/Mariosyian/marketplace/internal/events"
)

type indexContext struct {
	Items  []*domain.Item `json:"items"`
	Cart   []string       `json:"cart"`
	Errors []string       `json:"errors"`
}

type cartContext struct {
	Cart   []domain.LineItem `json:"cart"`
	Total  float64           `json:"total"`
	Errors []string          `json:"errors"`
}

type successContext struct {
	Purchased []domain.LineItem `json:"purchased"`
	Errors    []string          `json:"errors"`
}

type invoiceContext struct {
	Customer  domain.Customer   `json:"customer"`
	Purchased []domain.LineItem `json:"purchased"`
	Total     float64           `json:"total"`
	Today     string            `json:"today"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderListing(w, r, nil)
}

// handleSearch tokenizes the query on whitespace and filters the listing by
// case-insensitive name/description match.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	terms := strings.Fields(strings.TrimSpace(r.URL.Query().Get("search")))
	s.renderListing(w, r, terms)
}

func (s *Server) renderListing(w http.ResponseWriter, r *http.Request, terms []string) {
	items, err := s.store.ListItems(r.Context())
	if err != nil {
		log.Printf("Error while fetching items: %v", err)
		respondError(w, http.StatusInternalServerError, "catalog_unavailable", "failed to fetch items")
		return
	}

	if len(terms) > 0 {
		items = filterItems(items, terms)
	}
	if items == nil {
		items = []*domain.Item{}
	}

	respondJSON(w, http.StatusOK, indexContext{
		Items:  items,
		Cart:   s.cart.IDs(),
		Errors: s.notices.Drain(),
	})
}

func filterItems(items []*domain.Item, terms []string) []*domain.Item {
	matched := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		name := strings.ToLower(item.Name)
		description := strings.ToLower(item.Description)
		for _, term := range terms {
			term = strings.ToLower(term)
			if strings.Contains(name, term) || strings.Contains(description, term) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if err := s.cart.Add(itemID); err != nil {
		if errors.Is(err, cart.ErrDuplicateItem) {
			s.notices.Add(cart.NoticeDuplicateItem)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	s.cart.Remove(itemID)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	lines, total, err := s.resolver.Resolve(r.Context(), s.cart.IDs())
	if err != nil {
		log.Printf("Error while resolving cart: %v", err)
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "failed to resolve cart")
		return
	}

	respondJSON(w, http.StatusOK, cartContext{
		Cart:   lines,
		Total:  total,
		Errors: s.notices.Drain(),
	})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	lines, total, err := s.resolver.Resolve(r.Context(), s.cart.IDs())
	if err != nil {
		log.Printf("Error while resolving cart for purchase: %v", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if len(lines) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	order, err := checkout.BuildOrder(lines, total, s.shippingPrice, s.customer, s.orderCfg)
	if err != nil {
		var unavailable *checkout.UnavailableError
		if errors.As(err, &unavailable) {
			s.notices.Add(fmt.Sprintf(
				"One or more items in your cart aren't available: %s.",
				strings.Join(unavailable.Names, ", ")))
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		log.Printf("Error while building order: %v", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	approveURL, err := s.payments.CreateOrder(r.Context(), order)
	if err != nil {
		log.Printf("Error while completing purchase: %v", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.mu.Lock()
	s.pendingInvoiceID = order.InvoiceID()
	s.mu.Unlock()

	http.Redirect(w, r, approveURL, http.StatusSeeOther)
}

// handleSuccess finalizes an approved purchase: the purchased record is
// snapshotted from the live resolution, quantities are decremented and the
// cart is cleared. Archive and event publication are best-effort.
func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	lines, total, err := s.resolver.Resolve(r.Context(), s.cart.IDs())
	if err != nil {
		log.Printf("Error while resolving cart on success: %v", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	for _, line := range lines {
		if err := s.store.DecrementQuantity(r.Context(), line.ID); err != nil {
			log.Printf("Error while updating quantity for item %s: %v", line.ID, err)
		}
	}

	purchased := make([]domain.LineItem, len(lines))
	copy(purchased, lines)

	s.mu.Lock()
	s.purchased = purchased
	invoiceID := s.pendingInvoiceID
	s.pendingInvoiceID = ""
	s.mu.Unlock()

	s.cart.Clear()
	s.recordPurchase(r, invoiceID, purchased, total)

	respondJSON(w, http.StatusOK, successContext{
		Purchased: purchased,
		Errors:    s.notices.Drain(),
	})
}

func (s *Server) recordPurchase(r *http.Request, invoiceID string, purchased []domain.LineItem, total float64) {
	now := time.Now().UTC()

	if s.archiver != nil {
		err := s.archiver.SaveInvoice(r.Context(), &archive.Invoice{
			InvoiceID:     invoiceID,
			CustomerEmail: s.customer.Email,
			Lines:         purchased,
			ItemTotal:     total,
			Shipping:      s.shippingPrice,
			OrderTotal:    total + s.shippingPrice,
			CreatedAt:     now,
		})
		if err != nil {
			log.Printf("Error while archiving invoice %s: %v", invoiceID, err)
		}
	}

	if s.publisher != nil {
		err := s.publisher.PublishPurchase(r.Context(), events.PurchaseEvent{
			InvoiceID:   invoiceID,
			Items:       purchased,
			ItemTotal:   total,
			Shipping:    s.shippingPrice,
			OrderTotal:  total + s.shippingPrice,
			Currency:    "GBP",
			CompletedAt: now,
		})
		if err != nil {
			log.Printf("Error while publishing purchase event %s: %v", invoiceID, err)
		}
	}
}

// handleInvoice renders the purchased-record snapshot exactly once: the
// snapshot is cleared after the render, so a second fetch shows no items.
func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	purchased := s.purchased
	s.purchased = nil
	s.mu.Unlock()

	if purchased == nil {
		purchased = []domain.LineItem{}
	}

	var total float64
	for _, line := range purchased {
		total += line.Price
	}

	respondJSON(w, http.StatusOK, invoiceContext{
		Customer:  s.customer,
		Purchased: purchased,
		Total:     total,
		Today:     formatTimestamp(time.Now()),
	})
}

// formatTimestamp renders a UTC timestamp as HH:mm:ss DD-MM-YYYY.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("15:04:05 02-01-2006")
}
