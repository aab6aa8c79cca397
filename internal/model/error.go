package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeLineNotFound        = "LINE_NOT_FOUND"
	ErrCodeItemUnavailable     = "ITEM_UNAVAILABLE"
	ErrCodeGroupUnsatisfied    = "OPTION_GROUP_UNSATISFIED"
	ErrCodeOptionNotFound      = "OPTION_NOT_FOUND"
	ErrCodeCouponCodeEmpty     = "COUPON_CODE_EMPTY"
	ErrCodeCouponNotApplicable = "COUPON_NOT_APPLICABLE"
	ErrCodeCouponSuperseded    = "COUPON_SUPERSEDED"
	ErrCodeConfirmRemoval      = "CONFIRM_REMOVAL"
	ErrCodeStaleCatalog        = "STALE_CATALOG"
	ErrCodeMissingTable        = "MISSING_TABLE"
	ErrCodeMissingSession      = "MISSING_SESSION"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be at least one")
	ErrLineNotFound        = NewDomainError(ErrCodeLineNotFound, "Cart line not found")
	ErrItemUnavailable     = NewDomainError(ErrCodeItemUnavailable, "Item is currently unavailable")
	ErrOptionNotFound      = NewDomainError(ErrCodeOptionNotFound, "Option does not belong to this item")
	ErrCouponCodeEmpty     = NewDomainError(ErrCodeCouponCodeEmpty, "Coupon code must not be empty")
	ErrCouponNotApplicable = NewDomainError(ErrCodeCouponNotApplicable, "Coupon is not applicable to this order")
	ErrCouponSuperseded    = NewDomainError(ErrCodeCouponSuperseded, "Coupon validation superseded by a newer request")
	ErrConfirmRemoval      = NewDomainError(ErrCodeConfirmRemoval, "Quantity would drop to zero, confirm removal instead")
	ErrStaleCatalog        = NewDomainError(ErrCodeStaleCatalog, "Cart references items that no longer exist")
	ErrMissingTable        = NewDomainError(ErrCodeMissingTable, "No table selected for this session")
)

// GroupUnsatisfiedError reports the first SINGLE-mode option group without a
// selection, by name, so the caller can render a targeted message.
type GroupUnsatisfiedError struct {
	Group string
}

func (e *GroupUnsatisfiedError) Error() string {
	return fmt.Sprintf("option group %q requires a selection", e.Group)
}
