package server

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rezonia/billing/internal/model"
)

var registerOnce sync.Once

// registerJSONFieldNames makes validation errors name fields as they appear in JSON
func registerJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// statusFor maps domain error kinds to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicate), errors.Is(err, model.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidTaxRate), errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := statusFor(err)
	resp := ErrorResponse{
		Status:    status,
		Error:     err.Error(),
		RequestID: c.GetString(requestIDKey),
		Timestamp: time.Now().UTC(),
	}

	var rateErr *model.InvalidTaxRateError
	if errors.As(err, &rateErr) {
		resp.Rate = rateErr.Rate.String()
		resp.AllowedRates = make([]string, len(rateErr.Allowed))
		for i, r := range rateErr.Allowed {
			resp.AllowedRates[i] = r.String()
		}
	}

	var inputErr *model.InvalidInputError
	if errors.As(err, &inputErr) {
		field := inputErr.Field
		var lineErr *model.LineError
		if errors.As(err, &lineErr) {
			field = lineErr.Path()
		}
		resp.Fields = map[string]string{field: inputErr.Message}
	}

	switch status {
	case http.StatusInternalServerError:
		s.logger.Error("request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", resp.RequestID),
		)
		resp.Error = "internal server error"
	case http.StatusGatewayTimeout:
		resp.Error = "request timed out"
	}

	c.AbortWithStatusJSON(status, resp)
}

// abortWithBindError reports a malformed or invalid request body
func (s *Server) abortWithBindError(c *gin.Context, err error) {
	resp := ErrorResponse{
		Status:    http.StatusBadRequest,
		Error:     "invalid request body",
		RequestID: c.GetString(requestIDKey),
		Timestamp: time.Now().UTC(),
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Error = "validation failed"
		resp.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			resp.Fields[fieldPath(fe)] = validationMessage(fe)
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// fieldPath drops the request struct name: "lines[0].vat_rate"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
