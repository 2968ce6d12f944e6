package repository

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/gearshare/cart/pkg/response"
	orderResponse "github.com/Alturino/gearshare/order/pkg/response"
	productResponse "github.com/Alturino/gearshare/product/pkg/response"
	userResponse "github.com/Alturino/gearshare/user/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).Set(d.Coefficient()), Exp: d.Exponent(), Valid: true}
}

// DecimalFromNumeric maps NULL and NaN to zero.
func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// TextFromString maps the empty string to NULL.
func TextFromString(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func TextFromPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func DateFromTime(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	y, m, d := t.UTC().Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func TimeFromDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}

func TimestamptzFromTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func TimeFromTimestamptz(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Price:     DecimalFromNumeric(p.Price),
		Category:  p.Category,
		CreatedAt: p.CreatedAt.Time,
		UpdatedAt: p.UpdatedAt.Time,
	}
}

func (u User) Response() userResponse.User {
	return userResponse.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		Blocked:     u.Blocked,
		CreatedAt:   u.CreatedAt.Time,
		UpdatedAt:   u.UpdatedAt.Time,
	}
}

func (i OrderItem) Response() orderResponse.OrderItem {
	var option *cartResponse.SelectedOption
	if i.OptionName.Valid {
		option = &cartResponse.SelectedOption{
			Name:       i.OptionName.String,
			ExtraPrice: DecimalFromNumeric(i.OptionExtraPrice),
		}
	}
	return orderResponse.OrderItem{
		ID:                   i.ID,
		ProductID:            i.ProductID.String(),
		ProductName:          i.ProductName,
		ProductImage:         i.ProductImage,
		BasePrice:            DecimalFromNumeric(i.BasePrice),
		Quantity:             i.Quantity,
		SelectedOption:       option,
		ReturnDate:           TimeFromDate(i.ReturnDate),
		DailyRentalRate:      DecimalFromNumeric(i.DailyRentalRate),
		RentalDays:           int(i.RentalDays),
		RentalExtra:          DecimalFromNumeric(i.RentalExtra),
		PerUnitTotal:         DecimalFromNumeric(i.PerUnitTotal),
		LineTotal:            DecimalFromNumeric(i.LineTotal),
		CalculatedReturnDate: TimeFromTimestamptz(i.CalculatedReturnDate),
	}
}

func (o Order) Response(items []OrderItem) orderResponse.Order {
	orderItems := make([]orderResponse.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, item.Response())
	}
	return orderResponse.Order{
		ID:                   o.ID,
		UserID:               o.UserID,
		OrderNumber:          o.OrderNumber,
		CustomerName:         o.CustomerName,
		CustomerPhone:        o.CustomerPhone,
		DeliveryAddress:      o.DeliveryAddress,
		Note:                 o.Note,
		PaymentMethod:        o.PaymentMethod,
		TotalAmount:          DecimalFromNumeric(o.TotalAmount),
		Status:               o.Status,
		DeliveryDate:         TimeFromTimestamptz(o.DeliveryDate),
		CalculatedReturnDate: TimeFromTimestamptz(o.CalculatedReturnDate),
		CancelledBy:          o.CancelledBy.String,
		CancellationReason:   o.CancellationReason.String,
		CancelledAt:          TimeFromTimestamptz(o.CancelledAt),
		Items:                orderItems,
		CreatedAt:            o.CreatedAt.Time,
		UpdatedAt:            o.UpdatedAt.Time,
	}
}

func (f FindOrdersRow) Response(items []OrderItem) orderResponse.Order {
	order := f.Order.Response(items)
	if f.Username.Valid || f.Email.Valid {
		order.User = &orderResponse.Customer{
			Username:    f.Username.String,
			Email:       f.Email.String,
			PhoneNumber: f.PhoneNumber.String,
		}
	}
	return order
}

// GroupOrderItems indexes items by their order id, keeping position order.
func GroupOrderItems(items []OrderItem) map[uuid.UUID][]OrderItem {
	grouped := make(map[uuid.UUID][]OrderItem)
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped
}
