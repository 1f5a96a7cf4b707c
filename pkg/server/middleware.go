package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"vpstest/pkg/log"
)

const (
	// Combined log format: remote - user [time] "request" status bytes "referer" "agent".
	accessLogFormat = `${remote_ip} - - [${time_custom}] "${method} ${uri} ${protocol}" ` +
		`${status} ${bytes_out} "${referer}" "${user_agent}"` + "\n"
	accessLogTimeFormat = "02/Jan/2006:15:04:05 -0700"

	bodyLimit = "100K"

	contentSecurityPolicy = "default-src 'self';base-uri 'self';font-src 'self' https: data:;" +
		"form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';" +
		"script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';" +
		"upgrade-insecure-requests"
	hstsMaxAge = 15552000 // 180 days
)

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format:           accessLogFormat,
		CustomTimeFormat: accessLogTimeFormat,
		Output:           s.opts.AccessLog,
	}))

	s.echo.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: logPanic,
	}))

	s.echo.Use(middleware.BodyLimit(bodyLimit))

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            hstsMaxAge,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
	}))
	s.echo.Use(isolationHeaders)

	s.echo.Use(middleware.CORS())
}

// isolationHeaders adds the cross-origin isolation and legacy hardening
// headers that SecureConfig does not cover.
func isolationHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Response().Header()
		header.Set("Cross-Origin-Opener-Policy", "same-origin")
		header.Set("Cross-Origin-Resource-Policy", "same-origin")
		header.Set("Origin-Agent-Cluster", "?1")
		header.Set("X-DNS-Prefetch-Control", "off")
		header.Set("X-Download-Options", "noopen")
		header.Set("X-Permitted-Cross-Domain-Policies", "none")
		return next(ctx)
	}
}

func logPanic(ctx echo.Context, err error, stack []byte) error {
	log.Error().
		Err(err).
		Str("method", ctx.Request().Method).
		Str("uri", ctx.Request().RequestURI).
		Str("request_id", requestID(ctx)).
		Bytes("stack", stack).
		Msg("Recovered from handler panic")
	return &recoveredPanic{err: err}
}

// recoveredPanic marks an error already logged by logPanic.
type recoveredPanic struct {
	err error
}

func (p *recoveredPanic) Error() string {
	return p.err.Error()
}

func (p *recoveredPanic) Unwrap() error {
	return p.err
}

func requestID(ctx echo.Context) string {
	return ctx.Response().Header().Get(echo.HeaderXRequestID)
}
