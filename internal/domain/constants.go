package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// Ledger entry reasons. Every balance change carries exactly one of these.
const (
	ReasonPurchase       = "purchase"
	ReasonGiftSent       = "gift_sent"
	ReasonGiftReceived   = "gift_received"
	ReasonAdminCredit    = "admin_credit"
	ReasonAdminDebit     = "admin_debit"
	ReasonTransferOut    = "transfer_out"
	ReasonTransferIn     = "transfer_in"
	ReasonCallSettlement = "call_settlement"
)

// Ref types link a ledger entry back to the business object that caused it.
const (
	RefTypePurchase = "purchase"
	RefTypeGift     = "gift_event"
	RefTypeCall     = "call"
	RefTypeTransfer = "transfer"
	RefTypeAdmin    = "admin_op"
)

// Idempotency operation types. A key is consumed per operation type, so the
// same key on a credit and a transfer does not collide.
const (
	OpCredit     = "credit"
	OpDebit      = "debit"
	OpTransfer   = "transfer"
	OpSettleCall = "settle_call"
	OpPurchase   = "purchase"
	OpSendGift   = "send_gift"
)

// Settings keys seeded at migrate time.
const (
	SettingCreatorSharePercent = "gift_creator_share_percent"
	SettingCallPricePerMinute  = "call_price_per_minute"
)
