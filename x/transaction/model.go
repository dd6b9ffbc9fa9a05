package transaction

import (
	"github.com/kindredkeeper/keeper/core"
)

type applyRequest struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason"`
}

// LogResponse is one page of a character's history
type LogResponse = core.Paged[core.Transaction]
