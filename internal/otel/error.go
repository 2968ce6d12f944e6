package otel

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

const KeyErrorStatus = "error.status_code"

// RecordError marks span as failed and tags it with the http status the error maps to.
func RecordError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetAttributes(attribute.Int(KeyErrorStatus, inErrors.StatusCode(err)))
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
