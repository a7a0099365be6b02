package repository_test

import (
	"errors"
	"strings"
	"testing"

	"billbuckz/internal/models"
	"billbuckz/internal/repository"
)

func TestCreateAssignsDistinctReferralCodes(t *testing.T) {
	repo := repository.NewUserRepository(newTestDB(t))
	a := &models.User{Name: "A", PhoneNumber: "9400000001", PasswordHash: "x"}
	b := &models.User{Name: "B", PhoneNumber: "9400000002", PasswordHash: "x"}
	if err := repo.Create(a); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := repo.Create(b); err != nil {
		t.Fatalf("create b: %v", err)
	}
	if a.ReferralCode == "" || a.ReferralCode == b.ReferralCode {
		t.Fatalf("codes %q and %q must be distinct and non-empty", a.ReferralCode, b.ReferralCode)
	}
}

func TestCreateDuplicatePhoneIsNotRetried(t *testing.T) {
	repo := repository.NewUserRepository(newTestDB(t))
	if err := repo.Create(&models.User{Name: "A", PhoneNumber: "9400000003", PasswordHash: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(&models.User{Name: "B", PhoneNumber: "9400000003", PasswordHash: "x"})
	if err == nil {
		t.Fatal("duplicate phone accepted")
	}
	// The constraint violation must come back as-is, not be misreported as a
	// referral-code collision burning the retry budget.
	if !strings.Contains(err.Error(), "phone_number") {
		t.Fatalf("err = %v, want the phone_number constraint violation", err)
	}
}

func TestIsReferralCodeCollision(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"sqlite code violation", errors.New("UNIQUE constraint failed: users.referral_code"), true},
		{"mysql code violation", errors.New("Error 1062 (23000): Duplicate entry 'abcd1234' for key 'users.idx_users_referral_code'"), true},
		{"sqlite phone violation", errors.New("UNIQUE constraint failed: users.phone_number"), false},
		{"mysql phone violation", errors.New("Error 1062 (23000): Duplicate entry '9400000003' for key 'users.idx_users_phone_number'"), false},
		{"connection error", errors.New("driver: bad connection"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := repository.IsReferralCodeCollision(tc.err); got != tc.want {
				t.Fatalf("repository.IsReferralCodeCollision(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
