package request

type CreateOrder struct {
	CustomerName    string `json:"customerName"    validate:"max=255"`
	CustomerPhone   string `json:"customerPhone"   validate:"max=32"`
	DeliveryAddress string `json:"deliveryAddress"`
	Note            string `json:"note"`
	PaymentMethod   string `json:"paymentMethod"   validate:"max=64"`
}

type ConfirmOrder struct {
	DeliveryDays int `json:"deliveryDays" validate:"gt=0,max=3650"`
}

type CancelOrder struct {
	Reason string `json:"reason"`
}
