// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// # Timestamps

// localLayouts are the zone-less layouts the backend writes for its dates.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp decodes backend dates, with or without a zone offset.
// Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements [json.Unmarshaler].
func (timestamp *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		timestamp.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		timestamp.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		timestamp.Time = parsed
		return nil
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			timestamp.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", raw)
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (timestamp Timestamp) MarshalJSON() ([]byte, error) {
	if timestamp.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(timestamp.Time.Format(time.RFC3339))
}

// # Catalog

// Category groups books on the catalog page.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Book is a catalog entry.
type Book struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Description   string          `json:"description"`
	ISBN          string          `json:"isbn"`
	Price         decimal.Decimal `json:"price"`
	CoverImageURL string          `json:"coverImageUrl"`
	StockQuantity int             `json:"stockQuantity"`
	Category      *Category       `json:"category,omitempty"`
	RatingAverage float64         `json:"ratingAverage"`
	RatingCount   int             `json:"ratingCount"`
	CreatedAt     Timestamp       `json:"createdAt"`
	UpdatedAt     Timestamp       `json:"updatedAt"`
}

// InStock reports whether at least one copy is available.
func (book Book) InStock() bool {
	return book.StockQuantity > 0
}

// BookFilter narrows a catalog listing. Page is 0-indexed.
type BookFilter struct {
	Page       int
	Size       int
	Search     string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// # Reviews

// ReviewAuthor is the public part of the reviewer's account.
type ReviewAuthor struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Review is a rating and comment left on a book.
type Review struct {
	ID        int64         `json:"id"`
	Rating    int           `json:"rating"`
	Comment   string        `json:"comment"`
	User      *ReviewAuthor `json:"user,omitempty"`
	CreatedAt Timestamp     `json:"createdAt"`
	UpdatedAt Timestamp     `json:"updatedAt"`
}

// AuthoredBy reports whether the review belongs to the account with email.
func (review Review) AuthoredBy(email string) bool {
	return review.User != nil && email != "" && review.User.Email == email
}

// ReviewRequest creates or edits a review.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// # Cart

// CartItem is one line of the server-side cart. ID is the line id, distinct
// from BookID.
type CartItem struct {
	ID            int64           `json:"id"`
	BookID        int64           `json:"bookId"`
	BookTitle     string          `json:"bookTitle"`
	CoverImageURL string          `json:"coverImageUrl"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// Cart is the authoritative server-side cart.
type Cart struct {
	ID          int64           `json:"id"`
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// AddToCartRequest adds quantity copies of a book.
type AddToCartRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// UpdateQuantityRequest sets a cart line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// # Orders

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderPaid       OrderStatus = "PAID"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status the admin may assign.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderPaid, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled,
}

// Address is a shipping destination.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// OrderItem is a purchased line, priced at order time.
type OrderItem struct {
	ID        int64           `json:"id"`
	BookID    int64           `json:"bookId"`
	BookTitle string          `json:"bookTitle"`
	BookCover string          `json:"bookCover"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is a placed order.
type Order struct {
	ID               int64           `json:"id"`
	OrderItems       []OrderItem     `json:"orderItems"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           OrderStatus     `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentProvider  string          `json:"paymentProvider"`
	PaymentReference string          `json:"paymentReference"`
	ShippingAddress  Address         `json:"shippingAddress"`
	CreatedAt        Timestamp       `json:"createdAt"`
	UpdatedAt        Timestamp       `json:"updatedAt"`
}

// OrderRequest places an order for the current cart.
type OrderRequest struct {
	ShippingAddress Address `json:"shippingAddress"`
	PaymentProvider string  `json:"paymentProvider"`
}

// # Accounts

// Captcha is an arithmetic challenge required by login and registration.
type Captcha struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// LoginRequest exchanges credentials for a bearer token.
type LoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CaptchaID     string `json:"captchaId"`
	CaptchaAnswer string `json:"captchaAnswer"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	CaptchaID       string `json:"captchaId"`
	CaptchaAnswer   string `json:"captchaAnswer"`
}

// UserProfile is the signed-in account.
type UserProfile struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
}

// UpdateProfileRequest renames the account holder.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ChangePasswordRequest replaces the account password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// # Administration

// BookRequest creates or replaces a catalog entry.
type BookRequest struct {
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Description   string          `json:"description"`
	ISBN          string          `json:"isbn"`
	Price         decimal.Decimal `json:"price"`
	CoverImageURL string          `json:"coverImageUrl"`
	StockQuantity int             `json:"stockQuantity"`
	CategoryID    int64           `json:"categoryId"`
}

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type statusRequest struct {
	Status OrderStatus `json:"status"`
}
