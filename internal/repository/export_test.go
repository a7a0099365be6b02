package repository

// IsReferralCodeCollision exposes isReferralCodeCollision to external tests.
var IsReferralCodeCollision = isReferralCodeCollision
