package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"billbuckz/internal/domain"
	"billbuckz/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func createTestMerchant(t *testing.T, db *gorm.DB, name string) *models.Merchant {
	t.Helper()
	m := &models.Merchant{Name: name, City: "Bengaluru"}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	return m
}

func TestCreateInvoiceMerchantAboveThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000001")
	m := createTestMerchant(t, db, "Cafe One")

	res, err := svc.CreateInvoice(u.ID, decimal.NewFromInt(350), true, &m.ID, "https://img/1.jpg")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if res.Cashback == nil {
		t.Fatal("expected a cashback for a merchant bill at the threshold")
	}
	got := res.Cashback.Amount.IntPart()
	if got < domain.MerchantCashbackMin || got > domain.MerchantCashbackMax {
		t.Fatalf("cashback %d outside [%d, %d]", got, domain.MerchantCashbackMin, domain.MerchantCashbackMax)
	}
	if res.Cashback.Type != domain.CashbackTypeMerchant {
		t.Fatalf("cashback type = %q, want %q", res.Cashback.Type, domain.CashbackTypeMerchant)
	}
	if !reloadUser(t, db, u.ID).Balance.Equal(res.Cashback.Amount) {
		t.Fatal("balance was not credited with the cashback amount")
	}
}

func TestCreateInvoiceMerchantBelowThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000002")
	m := createTestMerchant(t, db, "Cafe Two")

	res, err := svc.CreateInvoice(u.ID, decimal.NewFromInt(299), true, &m.ID, "https://img/2.jpg")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if res.Cashback != nil {
		t.Fatalf("expected no cashback below the threshold, got %s", res.Cashback.Amount)
	}
	if !reloadUser(t, db, u.ID).Balance.IsZero() {
		t.Fatal("balance changed for a bill below the threshold")
	}
}

func TestCreateInvoiceNonMerchantCounter(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000003")

	// Bills 1..14 earn nothing, the 15th earns the flat reward, the 16th
	// nothing again.
	for i := 1; i <= domain.NonMerchantRewardEvery+1; i++ {
		res, err := svc.CreateInvoice(u.ID, decimal.NewFromInt(100), false, nil, fmt.Sprintf("https://img/n%d.jpg", i))
		if err != nil {
			t.Fatalf("bill %d: %v", i, err)
		}
		if res.NonMerchantBillCount != i {
			t.Fatalf("bill %d: counter = %d", i, res.NonMerchantBillCount)
		}
		if i == domain.NonMerchantRewardEvery {
			if res.Cashback == nil || res.Cashback.Amount.IntPart() != domain.NonMerchantReward {
				t.Fatalf("bill %d: expected flat reward %d, got %+v", i, domain.NonMerchantReward, res.Cashback)
			}
			if res.Cashback.Type != domain.CashbackTypeNonMerchant {
				t.Fatalf("bill %d: cashback type = %q", i, res.Cashback.Type)
			}
		} else if res.Cashback != nil {
			t.Fatalf("bill %d: unexpected cashback %s", i, res.Cashback.Amount)
		}
	}

	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(domain.NonMerchantReward)) {
		t.Fatalf("balance = %s, want %d", got, domain.NonMerchantReward)
	}
}

func TestCreateInvoiceConcurrentNonMerchantBills(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000007")

	// Counter at 14: two simultaneous submissions must serialize to 15 and 16
	// and pay the milestone reward exactly once.
	if err := db.Model(&models.User{}).Where("id = ?", u.ID).
		Update("non_merchant_bill_count", domain.NonMerchantRewardEvery-1).Error; err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	counters := make(chan int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.CreateInvoice(u.ID, decimal.NewFromInt(100), false, nil, fmt.Sprintf("https://img/c%d.jpg", i))
			if err != nil {
				t.Errorf("concurrent bill %d: %v", i, err)
				return
			}
			counters <- res.NonMerchantBillCount
		}(i)
	}
	wg.Wait()
	close(counters)

	var seen []int
	for n := range counters {
		seen = append(seen, n)
	}
	sort.Ints(seen)
	want := []int{domain.NonMerchantRewardEvery, domain.NonMerchantRewardEvery + 1}
	if len(seen) != 2 || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("observed counters %v, want %v", seen, want)
	}

	var cashbacks int64
	db.Model(&models.Cashback{}).Where("user_id = ?", u.ID).Count(&cashbacks)
	if cashbacks != 1 {
		t.Fatalf("cashback rows = %d, want exactly 1", cashbacks)
	}
	if got := reloadUser(t, db, u.ID).Balance; !got.Equal(decimal.NewFromInt(domain.NonMerchantReward)) {
		t.Fatalf("balance = %s, want %d", got, domain.NonMerchantReward)
	}
}

func TestCreateInvoiceUnknownMerchant(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000008")
	bogus := uint(9999)

	_, err := svc.CreateInvoice(u.ID, decimal.NewFromInt(400), true, &bogus, "https://img/x.jpg")
	if !errors.Is(err, ErrMerchantNotFound) {
		t.Fatalf("err = %v, want ErrMerchantNotFound", err)
	}
	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected submission persisted %d invoices", count)
	}
}

func TestCreateInvoiceMerchantIDIgnoredForNonMerchant(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000004")
	m := createTestMerchant(t, db, "Cafe Three")

	res, err := svc.CreateInvoice(u.ID, decimal.NewFromInt(500), false, &m.ID, "https://img/3.jpg")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if res.Invoice.MerchantID != nil {
		t.Fatal("merchant id should be dropped for a non-merchant bill")
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000005")

	cases := []struct {
		name       string
		amount     decimal.Decimal
		isMerchant bool
		merchantID *uint
		imageURL   string
		want       error
	}{
		{"zero amount", decimal.Zero, false, nil, "https://img/x.jpg", ErrInvalidAmount},
		{"negative amount", decimal.NewFromInt(-5), false, nil, "https://img/x.jpg", ErrInvalidAmount},
		{"missing image", decimal.NewFromInt(100), false, nil, "", ErrImageRequired},
		{"merchant without id", decimal.NewFromInt(400), true, nil, "https://img/x.jpg", ErrMerchantRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateInvoice(u.ID, tc.amount, tc.isMerchant, tc.merchantID, tc.imageURL)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected submissions persisted %d invoices", count)
	}
}

func TestCashbackIsUniquePerInvoice(t *testing.T) {
	db := newTestDB(t)
	svc := NewCashbackService(db, newTestLogger())
	u := createTestUser(t, db, "9000000006")
	m := createTestMerchant(t, db, "Cafe Four")

	res, err := svc.CreateInvoice(u.ID, decimal.NewFromInt(1000), true, &m.ID, "https://img/4.jpg")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	dup := models.Cashback{UserID: u.ID, InvoiceID: res.Invoice.ID, Amount: decimal.NewFromInt(3), Type: domain.CashbackTypeMerchant}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatal("second cashback for the same invoice should violate the unique index")
	}
}
