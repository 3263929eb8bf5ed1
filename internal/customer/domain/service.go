package domain

import (
	"context"
	"errors"
)

// CustomersPath tags cached customer lists.
const CustomersPath = "/dashboard/customers"

type ListCustomerResponse struct {
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
