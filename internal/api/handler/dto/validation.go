package dto

import (
	"customer-store/internal/pkg/apperrors"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

const (
	fieldFirstname         = "firstname"
	fieldLastname          = "lastname"
	fieldDateOfBirth       = "dateOfBirth"
	fieldPhoneNumber       = "phoneNumber"
	fieldEmail             = "email"
	fieldBankAccountNumber = "bankAccountNumber"

	maxBankAccountLength = 13
)

const (
	MsgFirstnameRequired   = "Firstname is required."
	MsgLastnameRequired    = "Lastname is required."
	MsgDateOfBirthRequired = "DateOfBirth is required."
	MsgPhoneFormat         = "Entered phone format is not valid."
	MsgEmailRequired       = "Email is required."
	MsgEmailFormat         = "Email is not a valid e-mail address."
	MsgBankAccountLength   = "BankAccountNumber must be at most 13 characters."
	MsgBankAccountFormat   = "BankAccountNumber must contain 7 to 14 digits."
)

// Named patterns usable as `regex=<name>`. Tag params cannot carry raw commas.
var patterns = map[string]*regexp.Regexp{
	"phone":       regexp.MustCompile(`^\(?([0-9]{3})\)?[-. ]?([0-9]{3})[-. ]?([0-9]{4})$`),
	"bankaccount": regexp.MustCompile(`^[0-9]{7,14}$`),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("regex", regexValidation); err != nil {
		panic(err)
	}
	return v
}

func regexValidation(fl validator.FieldLevel) bool {
	re, ok := patterns[fl.Param()]
	if !ok {
		return false
	}
	return re.MatchString(fl.Field().String())
}

// Validate checks every field independently and returns apperrors.FieldErrors
// keyed by JSON field name, or nil when the request is valid.
func (r *CreateCustomerRequest) Validate() error {
	errs := apperrors.FieldErrors{}

	if validate.Var(r.Firstname, "required") != nil {
		errs.Add(fieldFirstname, MsgFirstnameRequired)
	}
	if validate.Var(r.Lastname, "required") != nil {
		errs.Add(fieldLastname, MsgLastnameRequired)
	}
	if r.DateOfBirth.IsZero() {
		errs.Add(fieldDateOfBirth, MsgDateOfBirthRequired)
	}

	if validate.Var(strconv.FormatUint(r.PhoneNumber, 10), "regex=phone") != nil {
		errs.Add(fieldPhoneNumber, MsgPhoneFormat)
	}

	if validate.Var(r.Email, "required") != nil {
		errs.Add(fieldEmail, MsgEmailRequired)
	} else if validate.Var(r.Email, "email") != nil {
		errs.Add(fieldEmail, MsgEmailFormat)
	}

	if r.BankAccountNumber != "" {
		if validate.Var(r.BankAccountNumber, "max="+strconv.Itoa(maxBankAccountLength)) != nil {
			errs.Add(fieldBankAccountNumber, MsgBankAccountLength)
		}
		if validate.Var(r.BankAccountNumber, "regex=bankaccount") != nil {
			errs.Add(fieldBankAccountNumber, MsgBankAccountFormat)
		}
	}

	if !errs.HasErrors() {
		return nil
	}
	return errs
}
