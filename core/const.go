package core

const (
	RequesterIdCtxKey    = "kk-requesterId"
	RequesterRolesCtxKey = "kk-requesterRoles"
	RequesterIsGMCtxKey  = "kk-requesterIsGM"
)

const (
	RequesterIdHeader    = "kk-requester-id"
	RequesterRolesHeader = "kk-requester-roles"
)

// LedgerChannel is the redis channel ledger events are published on
const LedgerChannel = "keeper:ledger"

const (
	DefaultPageSize  = 10
	DefaultNameLimit = 20
	MaxNameLength    = 100
	MaxReasonLength  = 100
)
