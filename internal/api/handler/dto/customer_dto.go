package dto

import (
	"customer-store/internal/domain/customer"
	"time"
)

type CreateCustomerRequest struct {
	Firstname         string    `json:"firstname" example:"John"`
	Lastname          string    `json:"lastname" example:"Doe"`
	DateOfBirth       time.Time `json:"dateOfBirth" example:"1990-04-12T00:00:00Z"`
	PhoneNumber       uint64    `json:"phoneNumber" example:"9383548030"`
	Email             string    `json:"email" example:"john.doe@example.com"`
	BankAccountNumber string    `json:"bankAccountNumber,omitempty" example:"123456789"`
}

func (r *CreateCustomerRequest) ToProfile() customer.Profile {
	return customer.Profile{
		Firstname:         r.Firstname,
		Lastname:          r.Lastname,
		DateOfBirth:       r.DateOfBirth,
		PhoneNumber:       r.PhoneNumber,
		Email:             r.Email,
		BankAccountNumber: r.BankAccountNumber,
	}
}

// UpdateCustomerRequest replaces every mutable field. ID is optional and never
// selects the target row; the path parameter does.
type UpdateCustomerRequest struct {
	ID *int64 `json:"id,omitempty" example:"1"`
	CreateCustomerRequest
}

type CustomerResponse struct {
	ID                int64     `json:"id"`
	Firstname         string    `json:"firstname"`
	Lastname          string    `json:"lastname"`
	DateOfBirth       time.Time `json:"dateOfBirth"`
	PhoneNumber       uint64    `json:"phoneNumber"`
	Email             string    `json:"email"`
	BankAccountNumber string    `json:"bankAccountNumber"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	return CustomerResponse{
		ID:                cust.CustomerID,
		Firstname:         cust.Firstname,
		Lastname:          cust.Lastname,
		DateOfBirth:       cust.DateOfBirth,
		PhoneNumber:       cust.PhoneNumber,
		Email:             cust.Email,
		BankAccountNumber: cust.BankAccountNumber,
		CreatedAt:         cust.CreatedAt,
		UpdatedAt:         cust.UpdatedAt,
	}
}

func NewCustomerResponses(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, 0, len(customers))
	for _, cust := range customers {
		resp = append(resp, NewCustomerResponse(cust))
	}
	return resp
}

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ValidationProblemResponse struct {
	Title  string              `json:"title" example:"One or more validation errors occurred."`
	Status int                 `json:"status" example:"400"`
	Errors map[string][]string `json:"errors"`
}

const ValidationProblemTitle = "One or more validation errors occurred."

func NewValidationProblemResponse(status int, errs map[string][]string) ValidationProblemResponse {
	return ValidationProblemResponse{
		Title:  ValidationProblemTitle,
		Status: status,
		Errors: errs,
	}
}
