package service

import (
	"errors"
	"fmt"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
)

var (
	ErrProductInActiveOrder = errors.New("cannot delete product: it is part of an active order")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// StockError reports a checkout line that asks for more than is on hand.
type StockError struct {
	Title     string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.Title, e.Available)
}

func (e *StockError) Unwrap() error {
	return repository.ErrInsufficientStock
}

// MissingProductError names a checkout line whose product no longer exists.
type MissingProductError struct {
	Title string
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("Product %s not found", e.Title)
}

func (e *MissingProductError) Unwrap() error {
	return repository.ErrProductNotFound
}
