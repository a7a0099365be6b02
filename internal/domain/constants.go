package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	InvoiceStatusPending  = "PENDING"
	InvoiceStatusApproved = "APPROVED"
	InvoiceStatusRejected = "REJECTED"
)

const (
	WithdrawalStatusPending   = "PENDING"
	WithdrawalStatusCompleted = "COMPLETED"
	WithdrawalStatusFailed    = "FAILED"
)

const (
	CashbackTypeMerchant    = "MERCHANT"
	CashbackTypeNonMerchant = "NON_MERCHANT"
)

// Reward rules. Business tunes these, so they live here rather than inline.
const (
	// Merchant bills at or above this amount earn a random cashback drawn
	// uniformly from [MerchantCashbackMin, MerchantCashbackMax].
	MerchantMinBillAmount = 300
	MerchantCashbackMin   = 3
	MerchantCashbackMax   = 5

	// Every NonMerchantRewardEvery-th self-reported bill earns a flat reward.
	NonMerchantRewardEvery = 15
	NonMerchantReward      = 3

	// The referrer is paid once, when the referred user files exactly this
	// many invoices.
	ReferralRewardInvoices = 5
	ReferralReward         = 10
)

// Pay-later eligibility thresholds (approved merchant bills only).
const (
	PayLaterMinInvoices    = 30
	PayLaterMinSpend       = 30000
	PayLaterMinAccountDays = 45
	PayLaterMaxCreditLimit = 50000
)
