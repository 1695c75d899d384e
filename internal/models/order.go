package models

import "time"

// Order statuses. Orders are created pending; later transitions are
// handled outside this service.
const (
	OrderStatusPending = "pending"
)

// DefaultCurrency is the only currency the storefront sells in.
const DefaultCurrency = "USD"

// Customer is the contact block stored with an order.
type Customer struct {
	Name  string  `json:"name" bson:"name"`
	Email *string `json:"email" bson:"email"`
	Phone *string `json:"phone" bson:"phone"`
}

// Address is the shipping address stored with an order.
type Address struct {
	Street *string `json:"address" bson:"address" gorm:"column:street"`
	City   *string `json:"city" bson:"city"`
	Zip    *string `json:"zip" bson:"zip"`
}

// OrderItem is a line item frozen at placement time.
type OrderItem struct {
	ID        uint    `json:"-" bson:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" bson:"-" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"productId" bson:"productId" gorm:"type:varchar(64)"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	LineTotal float64 `json:"lineTotal" bson:"lineTotal"`
}

// Order is the immutable record of a completed checkout.
//
// CartToken and CartVersion identify the cart the order was placed from;
// storage keeps the pair unique so a retried checkout cannot be stored twice.
// SessionID scopes who may read the order.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber string      `json:"orderNumber" gorm:"index;type:varchar(32)"`
	SessionID   string      `json:"-" gorm:"index;type:varchar(64)"`
	CartToken   string      `json:"-" gorm:"uniqueIndex:idx_orders_checkout;type:varchar(36)"`
	CartVersion int64       `json:"-" gorm:"uniqueIndex:idx_orders_checkout"`
	Status      string      `json:"status" gorm:"type:varchar(20)"`
	Subtotal    float64     `json:"subtotal"`
	Shipping    float64     `json:"shipping"`
	Total       float64     `json:"total"`
	Currency    string      `json:"currency" gorm:"type:varchar(3)"`
	Customer    Customer    `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	Address     Address     `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ContactFields is the checkout form.
type ContactFields struct {
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=40"`
	Address   string `json:"address" validate:"omitempty,max=255"`
	City      string `json:"city" validate:"omitempty,max=100"`
	Zip       string `json:"zip" validate:"omitempty,max=20"`
}

// OrderReceipt is returned to the shopper after a successful checkout.
type OrderReceipt struct {
	OrderID     string  `json:"orderId"`
	OrderNumber string  `json:"orderNumber"`
	Total       float64 `json:"total"`
}

// Receipt returns the receipt for o.
func (o *Order) Receipt() *OrderReceipt {
	return &OrderReceipt{OrderID: o.ID, OrderNumber: o.OrderNumber, Total: o.Total}
}
