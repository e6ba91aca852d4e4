package repository

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrCategoryNotFound = errors.New("category not found")
var ErrCategorySlugTaken = errors.New("category slug already exists")
var ErrUnknownCategory = errors.New("unknown category")
var ErrOrderNotFound = errors.New("order not found")
var ErrInsufficientStock = errors.New("insufficient stock")
var ErrValueOutOfRange = errors.New("value out of range")
