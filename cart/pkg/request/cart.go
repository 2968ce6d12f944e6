package request

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ActionAdd = "add"
	ActionSet = "set"

	// MaxLineQuantity caps a single cart line, both per request and after an add merge.
	MaxLineQuantity = 10_000
)

type SelectedOption struct {
	Name       string           `json:"name"`
	ExtraPrice *decimal.Decimal `json:"extraPrice,omitempty" validate:"omitempty,decimalgte0"`
}

// UpsertCartLine carries an add-or-update against the line identified by (ProductID, option name).
// The option name may come from OptionName or SelectedOption.Name; OptionName wins when both are set.
type UpsertCartLine struct {
	SelectedOption *SelectedOption `json:"selectedOption,omitempty"`
	OptionName     string          `json:"optionName,omitempty"`
	ReturnDate     string          `json:"returnDate,omitempty"`
	Action         string          `json:"action,omitempty"     validate:"omitempty,oneof=add set"`
	ProductID      uuid.UUID       `json:"productId"            validate:"required"`
	Quantity       int32           `json:"quantity"             validate:"lte=10000"`
}

func (u UpsertCartLine) Option() string {
	if name := strings.TrimSpace(u.OptionName); name != "" {
		return name
	}
	if u.SelectedOption != nil {
		return strings.TrimSpace(u.SelectedOption.Name)
	}
	return ""
}

// OptionExtraPrice is nil when the caller did not supply one.
func (u UpsertCartLine) OptionExtraPrice() *decimal.Decimal {
	if u.SelectedOption == nil {
		return nil
	}
	return u.SelectedOption.ExtraPrice
}

func (u UpsertCartLine) Mode() string {
	if u.Action == ActionAdd {
		return ActionAdd
	}
	return ActionSet
}

type RemoveCartLine struct {
	ProductID  uuid.UUID `json:"productId"            validate:"required"`
	OptionName string    `json:"optionName,omitempty"`
}

func (r RemoveCartLine) Option() string {
	return strings.TrimSpace(r.OptionName)
}
