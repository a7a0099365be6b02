package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"billbuckz/internal/domain"
	"billbuckz/internal/models"
	"billbuckz/internal/repository"
	"billbuckz/pkg/payout"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newWalletService(db *gorm.DB) *WalletService {
	return newWalletServiceWith(db, &payout.ManualProvider{})
}

func newWalletServiceWith(db *gorm.DB, provider payout.Provider) *WalletService {
	return NewWalletService(
		db,
		repository.NewCashbackRepository(db),
		repository.NewReferralRepository(db),
		repository.NewWithdrawalRepository(db),
		provider,
		newTestLogger(),
	)
}

type failingPayoutProvider struct {
	calls int
}

func (p *failingPayoutProvider) Disburse(ctx context.Context, req payout.Request) (*payout.Result, error) {
	p.calls++
	return nil, errors.New("gateway unavailable")
}

func TestRequestWithdrawalReservesBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	u := createTestUser(t, db, "9200000001")
	setBalance(t, db, u.ID, "50")

	w, err := svc.RequestWithdrawal(u.ID, decimal.NewFromInt(30), "alice@upi")
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if w.Status != domain.WithdrawalStatusPending {
		t.Fatalf("status = %q, want PENDING", w.Status)
	}
	if w.OrderID == "" {
		t.Fatal("order id not assigned")
	}
	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("balance = %s, want 20", got)
	}
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	u := createTestUser(t, db, "9200000002")
	setBalance(t, db, u.ID, "10")

	_, err := svc.RequestWithdrawal(u.ID, decimal.NewFromInt(30), "bob@upi")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance = %s, rejection must not debit", got)
	}
	var count int64
	db.Model(&models.Withdrawal{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 0 {
		t.Fatalf("rejected request persisted %d withdrawal rows", count)
	}
}

func TestRequestWithdrawalValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	u := createTestUser(t, db, "9200000003")
	setBalance(t, db, u.ID, "100")

	if _, err := svc.RequestWithdrawal(u.ID, decimal.Zero, "a@b"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: err = %v", err)
	}
	if _, err := svc.RequestWithdrawal(u.ID, decimal.NewFromInt(10), "no-at-sign"); !errors.Is(err, ErrInvalidUpiID) {
		t.Fatalf("bad upi: err = %v", err)
	}
}

func TestResolveWithdrawalCompleted(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	u := createTestUser(t, db, "9200000004")
	setBalance(t, db, u.ID, "50")

	w, err := svc.RequestWithdrawal(u.ID, decimal.NewFromInt(30), "carol@upi")
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	resolved, err := svc.ResolveWithdrawal(context.Background(), w.ID, domain.WithdrawalStatusCompleted)
	if err != nil {
		t.Fatalf("ResolveWithdrawal: %v", err)
	}
	if resolved.Status != domain.WithdrawalStatusCompleted {
		t.Fatalf("status = %q", resolved.Status)
	}
	if resolved.PayoutRef == "" {
		t.Fatal("no payout reference recorded on completion")
	}
	// Completion pays out the already-reserved amount; no balance change.
	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("balance = %s, want 20", got)
	}
	if _, err := svc.ResolveWithdrawal(context.Background(), w.ID, domain.WithdrawalStatusFailed); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("re-resolve: err = %v", err)
	}
}

func TestResolveWithdrawalFailedRefunds(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	u := createTestUser(t, db, "9200000005")
	setBalance(t, db, u.ID, "50")

	w, err := svc.RequestWithdrawal(u.ID, decimal.NewFromInt(30), "dave@upi")
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if _, err := svc.ResolveWithdrawal(context.Background(), w.ID, domain.WithdrawalStatusFailed); err != nil {
		t.Fatalf("ResolveWithdrawal: %v", err)
	}
	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance = %s, failed withdrawal must refund", got)
	}
}

func TestResolveWithdrawalDisburseFailureRevertsToPending(t *testing.T) {
	db := newTestDB(t)
	provider := &failingPayoutProvider{}
	svc := newWalletServiceWith(db, provider)
	u := createTestUser(t, db, "9200000008")
	setBalance(t, db, u.ID, "50")

	w, err := svc.RequestWithdrawal(u.ID, decimal.NewFromInt(30), "frank@upi")
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if _, err := svc.ResolveWithdrawal(context.Background(), w.ID, domain.WithdrawalStatusCompleted); err == nil {
		t.Fatal("expected the provider failure to surface")
	}
	if provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1", provider.calls)
	}

	var reloaded models.Withdrawal
	if err := db.First(&reloaded, w.ID).Error; err != nil {
		t.Fatalf("reload withdrawal: %v", err)
	}
	if reloaded.Status != domain.WithdrawalStatusPending {
		t.Fatalf("status = %q, failed disbursement must stay PENDING", reloaded.Status)
	}
	// Reservation holds across the failure.
	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("balance = %s, want 20", got)
	}

	// A retry with a working provider settles it.
	resolved, err := newWalletService(db).ResolveWithdrawal(context.Background(), w.ID, domain.WithdrawalStatusCompleted)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if resolved.Status != domain.WithdrawalStatusCompleted || resolved.PayoutRef == "" {
		t.Fatalf("retry result = %+v", resolved)
	}
}

func TestRequestWithdrawalConcurrent(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	u := createTestUser(t, db, "9200000009")
	setBalance(t, db, u.ID, "50")

	// Two simultaneous requests of 30 against a balance of 50: the
	// conditional debit lets exactly one through.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RequestWithdrawal(u.ID, decimal.NewFromInt(30), "grace@upi")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var rejected int
	for err := range errs {
		if errors.Is(err, ErrInsufficientBalance) {
			rejected++
		} else if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if rejected != 1 {
		t.Fatalf("%d requests rejected, want exactly 1", rejected)
	}
	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("balance = %s, want 20", got)
	}
	var count int64
	db.Model(&models.Withdrawal{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 1 {
		t.Fatalf("withdrawal rows = %d, want 1", count)
	}
}

func TestResolveWithdrawalInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newWalletService(db)
	if _, err := svc.ResolveWithdrawal(context.Background(), 1, "PENDING"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestWalletSummary(t *testing.T) {
	db := newTestDB(t)
	walletSvc := newWalletService(db)
	cashbackSvc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9200000006")
	m := createTestMerchant(t, db, "Summary Store")

	// One merchant cashback in [3, 5].
	res, err := cashbackSvc.CreateInvoice(u.ID, decimal.NewFromInt(400), true, &m.ID, "https://img/s1.jpg")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	earned := res.Cashback.Amount

	// A referral credit for this user as referrer.
	referred := createTestUser(t, db, "9200000007")
	if err := db.Create(&models.ReferralHistory{
		UserID:         u.ID,
		ReferredUserID: referred.ID,
		Amount:         decimal.NewFromInt(domain.ReferralReward),
	}).Error; err != nil {
		t.Fatalf("seed referral history: %v", err)
	}
	setBalance(t, db, u.ID, earned.Add(decimal.NewFromInt(domain.ReferralReward)).String())

	// One completed and one pending withdrawal of 2 each.
	for _, status := range []string{domain.WithdrawalStatusCompleted, domain.WithdrawalStatusPending} {
		w, err := walletSvc.RequestWithdrawal(u.ID, decimal.NewFromInt(2), "eve@upi")
		if err != nil {
			t.Fatalf("RequestWithdrawal: %v", err)
		}
		if status != domain.WithdrawalStatusPending {
			if _, err := walletSvc.ResolveWithdrawal(context.Background(), w.ID, status); err != nil {
				t.Fatalf("ResolveWithdrawal: %v", err)
			}
		}
	}

	summary, err := walletSvc.Summary(reloadUser(t, db, u.ID))
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	wantEarned := earned.Add(decimal.NewFromInt(domain.ReferralReward))
	if !summary.TotalEarned.Equal(wantEarned) {
		t.Fatalf("TotalEarned = %s, want %s", summary.TotalEarned, wantEarned)
	}
	if !summary.TotalWithdrawn.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("TotalWithdrawn = %s, want 2", summary.TotalWithdrawn)
	}
	if !summary.PendingWithdrawals.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("PendingWithdrawals = %s, want 2", summary.PendingWithdrawals)
	}
	// Balance identity: earned minus non-failed withdrawals.
	wantBalance := wantEarned.Sub(decimal.NewFromInt(4))
	if !summary.Balance.Equal(wantBalance) {
		t.Fatalf("Balance = %s, want %s", summary.Balance, wantBalance)
	}
}
