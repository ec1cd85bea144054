package orders

import "time"

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResult carries the payment provider's confirmation fields.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// LineItem snapshots name/image/price at order time so later catalog
// edits do not retroactively alter historical orders. Qty is fixed at
// creation; quantity changes belong to the pre-order cart.
type LineItem struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Image   string  `json:"image,omitempty"`
	Price   float64 `json:"price"`
	Qty     int     `json:"qty"`
}

type Order struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"user"`
	Items           []LineItem      `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	IsCancelled     bool            `json:"isCancelled"`
	CreatedAt       time.Time       `json:"createdAt"`
}
