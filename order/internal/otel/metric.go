package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Alturino/gearshare/internal/constants"
)

var Meter = otel.Meter(constants.AppOrderService)

// TransitionCounter counts order status changes, labelled by from and to status.
var TransitionCounter = newTransitionCounter()

func newTransitionCounter() metric.Int64Counter {
	counter, err := Meter.Int64Counter(
		"order_transitions_total",
		metric.WithDescription("Number of order status transitions."),
	)
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}
	return counter
}
