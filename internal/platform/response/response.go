package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Code    string       `json:"code,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
	Meta    *pageMeta    `json:"meta,omitempty"`
}

type pageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with items and paging metadata.
func Paginated(c *gin.Context, items any, total int64, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Meta:    &pageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, envelope{Error: msg, Code: string(domain.KindValidation)})
}

// BindError writes a 400 for a failed ShouldBind call, listing every offending
// field when the failure came from struct validation.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		BadRequest(c, err.Error())
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   toSnake(fe.Field()),
			Message: describe(fe),
		})
	}
	c.JSON(http.StatusBadRequest, envelope{
		Error:  "request validation failed",
		Code:   string(domain.KindValidation),
		Fields: fields,
	})
}

// fieldReporter is implemented by errors that name the offending input field.
type fieldReporter interface {
	FieldName() string
}

// Error maps a service error to an HTTP response by its kind.
func Error(c *gin.Context, err error) {
	var kinded domain.Kinded
	if !errors.As(err, &kinded) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, envelope{Error: "internal server error"})
		return
	}

	body := envelope{Error: kinded.Error(), Code: string(kinded.Kind())}
	var fr fieldReporter
	if errors.As(err, &fr) && fr.FieldName() != "" {
		body.Fields = []FieldError{{Field: fr.FieldName(), Message: kinded.Error()}}
	}
	c.JSON(StatusFor(kinded.Kind()), body)
}

// StatusFor returns the HTTP status code used for an error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden, domain.KindUnauthorizedAction:
		return http.StatusForbidden
	case domain.KindConflict, domain.KindIllegalTransition, domain.KindIllegalState,
		domain.KindAlreadyRated, domain.KindConcurrentModification, domain.KindDuplicateID:
		return http.StatusConflict
	case domain.KindVehicleUnavailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
