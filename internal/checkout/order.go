package checkout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Mariosyian/marketplace/internal/domain"
)

// Provider constraint: descriptions longer than this are replaced by the
// item name.
const maxDescriptionLen = 127

const (
	currencyCode = "GBP"
	countryCode  = "GB"
)

// Order is the provider order payload, shaped to the checkout provider's
// wire contract.
type Order struct {
	ApplicationContext ApplicationContext `json:"application_context"`
	Intent             string             `json:"intent"`
	Payer              Payer              `json:"payer"`
	PurchaseUnits      []PurchaseUnit     `json:"purchase_units"`
}

type ApplicationContext struct {
	BrandName          string `json:"brand_name"`
	Locale             string `json:"locale"`
	LandingPage        string `json:"landing_page"`
	ShippingPreference string `json:"shipping_preference"`
	UserAction         string `json:"user_action"`
	ReturnURL          string `json:"return_url"`
	CancelURL          string `json:"cancel_url"`
}

type Payer struct {
	EmailAddress string  `json:"email_address"`
	Name         Name    `json:"name"`
	Address      Address `json:"address"`
}

type Name struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

type Address struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	PostalCode   string `json:"postal_code"`
	CountryCode  string `json:"country_code"`
}

type PurchaseUnit struct {
	Amount         Amount      `json:"amount"`
	Payee          Payee       `json:"payee"`
	InvoiceID      string      `json:"invoice_id"`
	SoftDescriptor string      `json:"soft_descriptor"`
	Items          []OrderItem `json:"items"`
}

type Amount struct {
	CurrencyCode string    `json:"currency_code"`
	Value        string    `json:"value"`
	Breakdown    Breakdown `json:"breakdown"`
	Shipping     Shipping  `json:"shipping"`
}

type Breakdown struct {
	ItemTotal Money `json:"item_total"`
	Shipping  Money `json:"shipping"`
}

type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Shipping struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Address Address `json:"address"`
}

type Payee struct {
	EmailAddress string `json:"email_address"`
}

type OrderItem struct {
	Name        string `json:"name"`
	UnitAmount  Money  `json:"unit_amount"`
	Quantity    string `json:"quantity"`
	Description string `json:"description"`
}

// BuildConfig carries the storefront-level facts every order shares.
type BuildConfig struct {
	BrandName  string
	PayeeEmail string
	ReturnURL  string
	CancelURL  string
}

// UnavailableError reports which resolved line items are out of stock. A
// build that would include any of them aborts with this error instead of
// sending an order the provider cannot fulfil.
type UnavailableError struct {
	Names []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("items unavailable: %s", strings.Join(e.Names, ", "))
}

// BuildOrder packages resolved line items into a provider order. Pure apart
// from the fresh invoice ID minted per call. The order total is the item
// total plus the flat shipping price, every amount rendered with exactly two
// decimals at the payload boundary.
func BuildOrder(lines []domain.LineItem, total, shipping float64, customer domain.Customer, cfg BuildConfig) (*Order, error) {
	var unavailable []string
	for _, line := range lines {
		if line.Unavailable {
			unavailable = append(unavailable, line.Name)
		}
	}
	if len(unavailable) > 0 {
		return nil, &UnavailableError{Names: unavailable}
	}

	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		description := line.Description
		if len(description) > maxDescriptionLen {
			description = line.Name
		}
		items = append(items, OrderItem{
			Name: line.Name,
			UnitAmount: Money{
				CurrencyCode: currencyCode,
				Value:        formatAmount(line.Price),
			},
			Quantity:    "1",
			Description: description,
		})
	}

	address := Address{
		AddressLine1: customer.Address1,
		AddressLine2: customer.Address2,
		PostalCode:   customer.PostalCode,
		CountryCode:  countryCode,
	}

	order := &Order{
		ApplicationContext: ApplicationContext{
			BrandName:          cfg.BrandName,
			Locale:             "en-GB",
			LandingPage:        "NO_PREFERENCE",
			ShippingPreference: "GET_FROM_FILE",
			UserAction:         "PAY_NOW",
			ReturnURL:          cfg.ReturnURL,
			CancelURL:          cfg.CancelURL,
		},
		Intent: "CAPTURE",
		Payer: Payer{
			EmailAddress: customer.Email,
			Name: Name{
				GivenName: customer.FirstName,
				Surname:   customer.LastName,
			},
			Address: address,
		},
		PurchaseUnits: []PurchaseUnit{
			{
				Amount: Amount{
					CurrencyCode: currencyCode,
					// Must equal item_total + shipping or the provider
					// rejects the order.
					Value: formatAmount(total + shipping),
					Breakdown: Breakdown{
						ItemTotal: Money{
							CurrencyCode: currencyCode,
							Value:        formatAmount(total),
						},
						Shipping: Money{
							CurrencyCode: currencyCode,
							Value:        formatAmount(shipping),
						},
					},
					Shipping: Shipping{
						Name:    customer.FirstName + " " + customer.LastName,
						Type:    "SHIPPING",
						Address: address,
					},
				},
				Payee:          Payee{EmailAddress: cfg.PayeeEmail},
				InvoiceID:      uuid.New().String(),
				SoftDescriptor: cfg.BrandName,
				Items:          items,
			},
		},
	}

	return order, nil
}

// InvoiceID returns the invoice identifier minted for this order.
func (o *Order) InvoiceID() string {
	if len(o.PurchaseUnits) == 0 {
		return ""
	}
	return o.PurchaseUnits[0].InvoiceID
}

// OrderTotal returns the amount value sent to the provider.
func (o *Order) OrderTotal() string {
	if len(o.PurchaseUnits) == 0 {
		return ""
	}
	return o.PurchaseUnits[0].Amount.Value
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}
