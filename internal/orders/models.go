package orders

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind distinguishes seat line items from concession products.
type ItemKind string

const (
	ItemSeat    ItemKind = "SEAT"
	ItemProduct ItemKind = "PRODUCT"
)

type Order struct {
	ID     uuid.UUID   `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Status OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`

	// Pricing snapshot, recomputed from items on every mutation.
	Subtotal        float64 `json:"subtotal" gorm:"not null;default:0"`
	DiscountCode    *string `json:"discount_code" gorm:"size:50"`
	DiscountPercent float64 `json:"discount_percent" gorm:"not null;default:0"`
	Total           float64 `json:"total" gorm:"not null;default:0"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`

	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

type OrderItem struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	Kind    ItemKind  `json:"kind" gorm:"type:varchar(10);not null"`

	// Exactly one of these is set depending on kind.
	ReservationID *uuid.UUID `json:"reservation_id" gorm:"type:uuid;uniqueIndex"`
	ProductID     *uuid.UUID `json:"product_id" gorm:"type:uuid"`

	Description string  `json:"description" gorm:"size:255"`
	UnitPrice   float64 `json:"unit_price" gorm:"not null"`
	Quantity    int     `json:"quantity" gorm:"not null;default:1"`
	LineTotal   float64 `json:"line_total" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// TableName specifies the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

type AddItemRequest struct {
	Kind          ItemKind `json:"kind" binding:"required,oneof=SEAT PRODUCT"`
	ReservationID string   `json:"reservation_id" binding:"required_if=Kind SEAT,omitempty,uuid"`
	ProductID     string   `json:"product_id" binding:"required_if=Kind PRODUCT,omitempty,uuid"`
	Quantity      int      `json:"quantity" binding:"omitempty,min=1,max=20"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
}

type OrderItemResponse struct {
	ID            string   `json:"id"`
	Kind          ItemKind `json:"kind"`
	ReservationID *string  `json:"reservation_id,omitempty"`
	ProductID     *string  `json:"product_id,omitempty"`
	Description   string   `json:"description"`
	UnitPrice     float64  `json:"unit_price"`
	Quantity      int      `json:"quantity"`
	LineTotal     float64  `json:"line_total"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	Status          OrderStatus         `json:"status"`
	Subtotal        float64             `json:"subtotal"`
	DiscountCode    *string             `json:"discount_code,omitempty"`
	DiscountPercent float64             `json:"discount_percent"`
	Total           float64             `json:"total"`
	Items           []OrderItemResponse `json:"items"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (i *OrderItem) ToResponse() OrderItemResponse {
	resp := OrderItemResponse{
		ID:          i.ID.String(),
		Kind:        i.Kind,
		Description: i.Description,
		UnitPrice:   i.UnitPrice,
		Quantity:    i.Quantity,
		LineTotal:   i.LineTotal,
	}
	if i.ReservationID != nil {
		id := i.ReservationID.String()
		resp.ReservationID = &id
	}
	if i.ProductID != nil {
		id := i.ProductID.String()
		resp.ProductID = &id
	}
	return resp
}

func (o *Order) ToResponse() OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, o.Items[i].ToResponse())
	}
	return OrderResponse{
		ID:              o.ID.String(),
		Status:          o.Status,
		Subtotal:        o.Subtotal,
		DiscountCode:    o.DiscountCode,
		DiscountPercent: o.DiscountPercent,
		Total:           o.Total,
		Items:           items,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
