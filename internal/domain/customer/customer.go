package customer

import "time"

type Customer struct {
	CustomerID        int64
	Firstname         string
	Lastname          string
	DateOfBirth       time.Time
	PhoneNumber       uint64
	Email             string
	BankAccountNumber string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Profile holds every caller-settable field of a Customer.
type Profile struct {
	Firstname         string
	Lastname          string
	DateOfBirth       time.Time
	PhoneNumber       uint64
	Email             string
	BankAccountNumber string
}

func NewCustomer(p Profile) *Customer {
	now := time.Now()
	return &Customer{
		Firstname:         p.Firstname,
		Lastname:          p.Lastname,
		DateOfBirth:       p.DateOfBirth,
		PhoneNumber:       p.PhoneNumber,
		Email:             p.Email,
		BankAccountNumber: p.BankAccountNumber,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ApplyProfile overwrites all mutable fields. CustomerID and CreatedAt are kept.
func (c *Customer) ApplyProfile(p Profile) {
	c.Firstname = p.Firstname
	c.Lastname = p.Lastname
	c.DateOfBirth = p.DateOfBirth
	c.PhoneNumber = p.PhoneNumber
	c.Email = p.Email
	c.BankAccountNumber = p.BankAccountNumber
	c.UpdatedAt = time.Now()
}

func (c *Customer) Profile() Profile {
	return Profile{
		Firstname:         c.Firstname,
		Lastname:          c.Lastname,
		DateOfBirth:       c.DateOfBirth,
		PhoneNumber:       c.PhoneNumber,
		Email:             c.Email,
		BankAccountNumber: c.BankAccountNumber,
	}
}
