package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"1.234,56", 123456, true},
		{"1,234.56", 123456, true},
		{"R$ 1.234,56", 123456, true},
		{"-100", -10000, true},
		{"-0,5", -50, true},
		{"1.005", 101, true},
		{"12,345", 1235, true},
		{"0", 0, true},
		{" 2.50 ", 250, true},
		{"abc", 0, false},
		{"1,2,3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDecimalToCentsRejectsNonPositive(t *testing.T) {
	for _, in := range []string{"0", "-1", "-0,01"} {
		if _, err := ParseDecimalToCents(in); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
	if c, err := ParseDecimalToCents("9,99"); err != nil || c != 999 {
		t.Fatalf("expected 999, got %d (err=%v)", c, err)
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":-100,"b":"1.234,56","c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Cents != -10000 || v.B.Cents != 123456 || v.C.Cents != 0 {
		t.Fatalf("unexpected values %+v", v)
	}
	out, err := json.Marshal(Money{Cents: -10050})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "-100.50" {
		t.Fatalf("expected -100.50, got %s", out)
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := map[int64]string{
		123456: "R$ 1.234,56",
		5:      "R$ 0,05",
		-90000: "-R$ 900,00",
	}
	for cents, want := range cases {
		if got := Cents(cents).Format(); got != want {
			t.Fatalf("%d: expected %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	if got := Sum(Cents(100), Cents(-250), Cents(50)); got.Cents != -100 {
		t.Fatalf("sum: got %d", got.Cents)
	}
	if got := Cents(1000).MulFloat(2.5); got.Cents != 2500 {
		t.Fatalf("mul: got %d", got.Cents)
	}
	if got := Percent(Cents(250), Cents(1000)); got != 25 {
		t.Fatalf("percent: got %v", got)
	}
	if got := Percent(Cents(1), Cents(0)); got != 0 {
		t.Fatalf("percent of zero: got %v", got)
	}
	if got := Percent(Cents(1), Cents(3)); got != 33.33 {
		t.Fatalf("percent rounding: got %v", got)
	}
}
