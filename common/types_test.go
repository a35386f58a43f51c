package common

import (
	"strings"
	"testing"
)

func TestHashFromString(t *testing.T) {
	want := Hash{0x01, 0x02}
	want[31] = 0xff
	str := "0102" + strings.Repeat("00", 29) + "ff"
	for _, input := range []string{str, "0x" + str, "0X" + str} {
		got, err := HashFromString(input)
		if err != nil {
			t.Fatalf("failed to parse %s: %v", input, err)
		}
		if got != want {
			t.Errorf("unexpected hash, wanted %v, got %v", want, got)
		}
	}
	for _, input := range []string{"", "0x", "0x01", "zz" + str[2:], str + "00"} {
		if _, err := HashFromString(input); err == nil {
			t.Errorf("parsing %q should have failed", input)
		}
	}
}

func TestHash_StringIsParsable(t *testing.T) {
	hash := Sha256([]byte("hello"))
	got, err := HashFromString(hash.String())
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if got != hash {
		t.Errorf("unexpected hash, wanted %v, got %v", hash, got)
	}
}

func TestHashFromBytes_RequiresExactLength(t *testing.T) {
	if _, err := HashFromBytes(make([]byte, 31)); err == nil {
		t.Errorf("short input should be rejected")
	}
	if _, err := HashFromBytes(make([]byte, 33)); err == nil {
		t.Errorf("long input should be rejected")
	}
	hash, err := HashFromBytes(make([]byte, 32))
	if err != nil || !hash.IsZero() {
		t.Errorf("unexpected result %v, %v", hash, err)
	}
}

func TestHash_CompareIsConsistentWithByteOrder(t *testing.T) {
	a, b := Hash{1}, Hash{2}
	c := Hash{1}
	c[31] = 1
	tests := []struct {
		x, y Hash
		want int
	}{
		{a, a, 0},
		{a, b, -1},
		{b, a, 1},
		{a, c, -1},
		{c, b, -1},
	}
	for _, test := range tests {
		if got := test.x.Compare(test.y); got != test.want {
			t.Errorf("unexpected order of %v and %v, wanted %d, got %d", test.x, test.y, test.want, got)
		}
	}
	if a.IsZero() || !(Hash{}).IsZero() {
		t.Errorf("zero check is broken")
	}
}
