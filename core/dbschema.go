package core

import (
	"time"
)

// Character is a player-owned ledger account
// balances are mutated only through transactions
type Character struct {
	ID    uint   `json:"id" gorm:"primaryKey;auto_increment"`
	Name  string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	AP    int64  `json:"ap" gorm:"type:bigint;not null;default:0"`
	RP    int64  `json:"rp" gorm:"type:bigint;not null;default:0"`
	Owner int64  `json:"owner" gorm:"type:bigint;index"`
}

// Balance returns the character's balance in the given currency
func (c Character) Balance(currency Currency) int64 {
	switch currency {
	case CurrencyAP:
		return c.AP
	case CurrencyRP:
		return c.RP
	}
	return 0
}

// Transaction is one signed balance change of a character
// immutable
type Transaction struct {
	ID          uint      `json:"id" gorm:"primaryKey;auto_increment"`
	CharacterID uint      `json:"characterID" gorm:"not null;index"`
	Currency    Currency  `json:"currency" gorm:"type:varchar(2);not null"`
	Amount      int64     `json:"amount" gorm:"type:bigint;not null"`
	Actor       int64     `json:"actor" gorm:"type:bigint"`
	Reason      string    `json:"reason" gorm:"type:varchar(100)"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null;index"`

	Character *Character `json:"-" gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE"`
}
