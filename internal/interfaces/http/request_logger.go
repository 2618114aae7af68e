package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID cabecera de correlación de peticiones.
const HeaderRequestID = "X-Request-Id"

// RequestLogger asigna un request id, abre el span de la petición (continuando el traceparent
// entrante) y registra una línea por petición con zerolog. El logger queda en el UserContext.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	tracer := otel.Tracer("github.com/jhoicas/stock-ledger/internal/interfaces/http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(HeaderRequestID, reqID)

		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		l := log.With().Str("request_id", reqID).Logger()
		c.SetUserContext(l.WithContext(ctx))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		span.SetAttributes(attribute.Int("http.status_code", status), attribute.String("business.id", GetBusinessID(c)))

		ev := l.Info()
		if status >= fiber.StatusInternalServerError {
			ev = l.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("business_id", GetBusinessID(c)).
			Msg("request")
		return err
	}
}
