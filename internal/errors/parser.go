package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostgreSQL error classes we care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ErrorInfo is the parsed, client-safe view of a store error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a raw store error into an error code and a message
// that is safe to show to the client. Sensitive driver detail stays out of
// the response.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return parseUniqueViolation(pqErr)
		case pgForeignKeyViolation:
			return parseForeignKeyViolation(pqErr)
		case pgNotNullViolation:
			return ErrorInfo{
				Code:    ValidationRequired,
				Message: "A required field is missing",
			}
		case pgCheckViolation:
			return ErrorInfo{
				Code:    ValidationInvalidRange,
				Message: "A field value is out of range",
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again later",
	}
}

func parseUniqueViolation(pqErr *pq.Error) ErrorInfo {
	constraint := strings.ToLower(pqErr.Constraint)

	switch {
	case strings.Contains(constraint, "username"):
		return ErrorInfo{Code: AuthUsernameExists, Message: "That username is already taken"}
	case strings.Contains(constraint, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "That email is already registered"}
	case strings.Contains(constraint, "carts") && strings.Contains(constraint, "user_id"):
		// The one-cart-per-user constraint; callers upsert, so a raced
		// insert reads as a conflict rather than a server fault.
		return ErrorInfo{Code: ResourceConflict, Message: "A cart already exists for this user"}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "That record already exists",
	}
}

func parseForeignKeyViolation(pqErr *pq.Error) ErrorInfo {
	detail := strings.ToLower(pqErr.Constraint + " " + pqErr.Detail)

	if strings.Contains(detail, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The record is referenced by other data and cannot be deleted",
		}
	}

	switch {
	case strings.Contains(detail, "product_id"):
		return ErrorInfo{Code: ProductNotFound, Message: "Product not found"}
	case strings.Contains(detail, "user_id"):
		return ErrorInfo{Code: ResourceNotFound, Message: "User not found"}
	case strings.Contains(detail, "cart_id"):
		return ErrorInfo{Code: CartNotFound, Message: "No cart found"}
	case strings.Contains(detail, "order_id"):
		return ErrorInfo{Code: OrderNotFound, Message: "Order not found"}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record does not exist",
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "cart"):
		return "No cart found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	}

	return "The requested record was not found"
}
