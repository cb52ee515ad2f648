package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps a storage error to a client-safe code and message.
// context names the operation, e.g. "create product" or "order".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	lower := strings.ToLower(err.Error())

	// Postgres 23505 and SQLite UNIQUE failures.
	if strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint") {
		return parseDuplicateKeyError(lower)
	}

	if strings.Contains(lower, "foreign key constraint") {
		if strings.Contains(lower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "The record is still in use and cannot be deleted"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	}

	if strings.Contains(lower, "not-null constraint") || strings.Contains(lower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(lower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "One or more values are invalid"}
	}

	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "The store is temporarily unavailable. Please try again"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(lower string) ErrorInfo {
	switch {
	case strings.Contains(lower, "slug"):
		return ErrorInfo{Code: ProductSlugExists, Message: "A product with this slug already exists"}
	case strings.Contains(lower, "order_number"):
		return ErrorInfo{Code: ResourceConflict, Message: "Order number already in use"}
	case strings.Contains(lower, "email"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "An account with this email already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
}

func notFoundCode(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "variant"):
		return ProductVariantNotFound
	case strings.Contains(lower, "product"):
		return ProductNotFound
	case strings.Contains(lower, "order"):
		return OrderNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "variant"):
		return "Variant not found"
	case strings.Contains(lower, "product"):
		return "Product not found"
	case strings.Contains(lower, "order"):
		return "Order not found"
	case strings.Contains(lower, "user") || strings.Contains(lower, "profile"):
		return "User not found"
	}
	return "The requested record was not found"
}

func defaultMessage(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "create"):
		return "Could not save. Please try again"
	case strings.Contains(lower, "update"):
		return "Could not update. Please try again"
	case strings.Contains(lower, "delete"):
		return "Could not delete. Please try again"
	}
	return "Something went wrong. Please try again"
}

// ParseAndRespond writes ParseError's result as the response body.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
