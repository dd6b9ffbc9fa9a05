package core

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorNotFound struct {
	Resource string
}

func (e ErrorNotFound) Error() string {
	if e.Resource == "" {
		return "Not Found"
	}
	return e.Resource + " Not Found"
}

// Is matches any ErrorNotFound when the target has no resource set
func (e ErrorNotFound) Is(target error) bool {
	t, ok := target.(ErrorNotFound)
	if !ok {
		return false
	}
	return t.Resource == "" || t.Resource == e.Resource
}

func NewErrorNotFound() ErrorNotFound {
	return ErrorNotFound{}
}

func NewErrorCharacterNotFound() ErrorNotFound {
	return ErrorNotFound{Resource: "Character"}
}

func NewErrorTransactionNotFound() ErrorNotFound {
	return ErrorNotFound{Resource: "Transaction"}
}

type ErrorAlreadyExists struct {
}

func (e ErrorAlreadyExists) Error() string {
	return "Already Exists"
}

func NewErrorAlreadyExists() ErrorAlreadyExists {
	return ErrorAlreadyExists{}
}

type ErrorInsufficientFunds struct {
	Currency Currency
	Balance  int64
	Amount   int64
}

func (e ErrorInsufficientFunds) Error() string {
	return fmt.Sprintf("Insufficient Funds: %d %s available, %d requested", e.Balance, e.Currency, magnitude(e.Amount))
}

func magnitude(amount int64) uint64 {
	if amount < 0 {
		return uint64(-(amount + 1)) + 1
	}
	return uint64(amount)
}

func (e ErrorInsufficientFunds) Is(target error) bool {
	_, ok := target.(ErrorInsufficientFunds)
	return ok
}

func NewErrorInsufficientFunds(currency Currency, balance, amount int64) ErrorInsufficientFunds {
	return ErrorInsufficientFunds{Currency: currency, Balance: balance, Amount: amount}
}

type ErrorInvalidArgument struct {
	Detail string
}

func (e ErrorInvalidArgument) Error() string {
	return "Invalid Argument: " + e.Detail
}

func (e ErrorInvalidArgument) Is(target error) bool {
	_, ok := target.(ErrorInvalidArgument)
	return ok
}

func NewErrorInvalidArgument(detail string) ErrorInvalidArgument {
	return ErrorInvalidArgument{Detail: detail}
}

type ErrorPermissionDenied struct {
}

func (e ErrorPermissionDenied) Error() string {
	return "Permission Denied"
}

func NewErrorPermissionDenied() ErrorPermissionDenied {
	return ErrorPermissionDenied{}
}

// ErrorStorage is an underlying persistence failure
type ErrorStorage struct {
	cause error
}

func (e ErrorStorage) Error() string {
	return "Storage Error: " + e.cause.Error()
}

func (e ErrorStorage) Unwrap() error {
	return e.cause
}

func (e ErrorStorage) Is(target error) bool {
	_, ok := target.(ErrorStorage)
	return ok
}

func NewErrorStorage(err error, message string) ErrorStorage {
	return ErrorStorage{cause: errors.Wrap(err, message)}
}
