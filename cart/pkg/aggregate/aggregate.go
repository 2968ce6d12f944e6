// Package aggregate prices cart lines against live product data.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/Alturino/gearshare/cart/pkg/response"
	"github.com/Alturino/gearshare/internal/constants"
	"github.com/Alturino/gearshare/internal/log"
	inOtel "github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/internal/repository"
	"github.com/Alturino/gearshare/pricing"
)

var tracer = otel.Tracer(constants.AppCartService)

type Querier interface {
	FindCartLinesByUserID(ctx context.Context, userID uuid.UUID) ([]repository.FindCartLinesByUserIDRow, error)
}

// Line prices a single row. A dangling product reference prices at zero with empty name and image.
func Line(row repository.FindCartLinesByUserIDRow, now time.Time) response.LineItem {
	basePrice := repository.DecimalFromNumeric(row.ProductPrice)
	optionExtra := decimal.Zero
	var option *response.SelectedOption
	if row.OptionName.Valid {
		optionExtra = repository.DecimalFromNumeric(row.OptionExtraPrice)
		option = &response.SelectedOption{Name: row.OptionName.String, ExtraPrice: optionExtra}
	}

	returnDate := repository.TimeFromDate(row.ReturnDate)
	rentalDays := pricing.RentalDays(returnDate, now)
	rentalExtra := pricing.RentalExtra(basePrice, rentalDays)
	perUnitTotal := pricing.PerUnitTotal(basePrice, optionExtra, rentalExtra)

	return response.LineItem{
		CartLineID:      row.ID,
		ProductID:       row.ProductID.String(),
		ProductName:     row.ProductName.String,
		ProductImage:    row.ProductImage.String,
		BasePrice:       basePrice,
		Quantity:        row.Quantity,
		SelectedOption:  option,
		ReturnDate:      returnDate,
		DailyRentalRate: pricing.DailyRentalRate(basePrice),
		RentalDays:      rentalDays,
		RentalExtra:     rentalExtra,
		PerUnitTotal:    perUnitTotal,
		LineTotal:       pricing.LineTotal(perUnitTotal, row.Quantity),
	}
}

// Build never fails; no rows yields an empty cart with zero totals.
// ItemCount is the sum of quantities and LineCount the number of distinct lines.
func Build(rows []repository.FindCartLinesByUserIDRow, now time.Time) response.Cart {
	cart := response.Cart{
		Items:       make([]response.LineItem, 0, len(rows)),
		TotalAmount: decimal.Zero,
	}
	for _, row := range rows {
		item := Line(row, now)
		cart.Items = append(cart.Items, item)
		cart.TotalAmount = cart.TotalAmount.Add(item.LineTotal)
		cart.ItemCount += int(item.Quantity)
	}
	cart.LineCount = len(cart.Items)
	if len(rows) > 0 {
		cart.UserID = rows[0].UserID
	}
	return cart
}

func Load(c context.Context, q Querier, userID uuid.UUID, now time.Time) (response.Cart, error) {
	c, span := tracer.Start(c, "aggregate Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "aggregate Load").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart lines").Logger()
	logger.Trace().Msg("finding cart lines")
	rows, err := q.FindCartLinesByUserID(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart lines with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Int(log.KeyCartLineCount, len(rows)).Logger()
	logger.Trace().Msg("found cart lines")

	cart := Build(rows, now)
	cart.UserID = userID
	return cart, nil
}
