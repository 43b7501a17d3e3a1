package models

import "testing"

func TestValidPIN(t *testing.T) {
	cases := []struct {
		pin  string
		want bool
	}{
		{"1234", true},
		{"123456", true},
		{"0000", true},
		{"123", false},     // 太短
		{"1234567", false}, // 太长
		{"12a4", false},
		{"12 4", false},
		{"", false},
		{"١٢٣٤", false}, // 非 ASCII 数字也不行
	}
	for _, c := range cases {
		if got := ValidPIN(c.pin); got != c.want {
			t.Errorf("ValidPIN(%q) = %v, want %v", c.pin, got, c.want)
		}
	}
}

func TestPersonPINRoundTrip(t *testing.T) {
	var p Person
	if err := p.SetPIN("4321"); err != nil {
		t.Fatalf("SetPIN: %v", err)
	}
	if p.PINHash == "" || p.PINHash == "4321" {
		t.Fatal("PIN stored in the clear or not at all")
	}
	if !p.CheckPIN("4321") {
		t.Error("correct PIN rejected")
	}
	if p.CheckPIN("1234") {
		t.Error("wrong PIN accepted")
	}
	if p.CheckPIN("") {
		t.Error("empty PIN accepted")
	}
}

func TestOperatorPasswordRoundTrip(t *testing.T) {
	var o Operator
	if err := o.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if !o.CheckPassword("correct horse battery") {
		t.Error("correct password rejected")
	}
	if o.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
}

func TestLoanOpen(t *testing.T) {
	var l Loan
	if !l.Open() {
		t.Error("loan without returned_at should be open")
	}
	now := l.CreatedAt
	l.ReturnedAt = &now
	if l.Open() {
		t.Error("returned loan should not be open")
	}
}
