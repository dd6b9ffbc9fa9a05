package core

import (
	"strings"
	"time"
)

type Currency string

const (
	CurrencyAP Currency = "AP"
	CurrencyRP Currency = "RP"
)

// ParseCurrency accepts "AP" or "RP" in any case
func ParseCurrency(input string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(input))) {
	case CurrencyAP:
		return CurrencyAP, nil
	case CurrencyRP:
		return CurrencyRP, nil
	}
	return "", NewErrorInvalidArgument("unknown currency: " + input)
}

// Valid reports whether c is one of the two ledger currencies
func (c Currency) Valid() bool {
	return c == CurrencyAP || c == CurrencyRP
}

// Column returns the character column holding this currency's balance
func (c Currency) Column() string {
	return strings.ToLower(string(c))
}

// SortKey selects the leaderboard ordering
type SortKey string

const (
	SortByName SortKey = ""
	SortByAP   SortKey = "AP"
	SortByRP   SortKey = "RP"
)

// ParseSortKey maps an optional currency name to a leaderboard ordering
func ParseSortKey(input string) (SortKey, error) {
	if strings.TrimSpace(input) == "" {
		return SortByName, nil
	}
	currency, err := ParseCurrency(input)
	if err != nil {
		return SortByName, err
	}
	return SortKey(currency), nil
}

// Pages returns the number of pages needed to hold total rows
func Pages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Offset returns the row offset of a 1-based page
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

type EventType string

const (
	EventCharacterCreated    EventType = "character.created"
	EventCharacterDeleted    EventType = "character.deleted"
	EventTransactionApplied  EventType = "transaction.applied"
	EventTransactionRefunded EventType = "transaction.refunded"
	EventTransactionErased   EventType = "transaction.erased"
)

// LedgerEvent is published after a ledger write has been committed
type LedgerEvent struct {
	Type        EventType    `json:"type"`
	Character   Character    `json:"character"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}
