package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument indicates a required input was missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownShippingMethod is matched by every *UnknownShippingMethodError.
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
	// ErrUnknownPaymentMethod is matched by every *UnknownPaymentMethodError.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// UnknownShippingMethodError reports a shipment method and option pair that
// none of the cart's available shipping rates offers.
type UnknownShippingMethodError struct {
	Code   string
	Option string
}

func (e *UnknownShippingMethodError) Error() string {
	return fmt.Sprintf("unknown shipping method %q with option %q", e.Code, e.Option)
}

func (e *UnknownShippingMethodError) Is(target error) bool {
	return target == ErrUnknownShippingMethod
}

// UnknownPaymentMethodError reports a gateway code that matches no active
// payment method of the store.
type UnknownPaymentMethodError struct {
	Code string
}

func (e *UnknownPaymentMethodError) Error() string {
	return fmt.Sprintf("unknown payment method %q", e.Code)
}

func (e *UnknownPaymentMethodError) Is(target error) bool {
	return target == ErrUnknownPaymentMethod
}

// InvalidArgument wraps ErrInvalidArgument with a description of the input.
func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}
