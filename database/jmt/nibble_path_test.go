package jmt

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/Fantom-foundation/Arbor/go/common"
)

func TestNibblePath_Construction(t *testing.T) {
	tests := []struct {
		buf  []byte
		n    int
		fail bool
	}{
		{nil, 0, false},
		{[]byte{0x12}, 1, false},
		{[]byte{0x12}, 2, false},
		{[]byte{0x12}, 3, true},
		{make([]byte, 32), 64, false},
		{make([]byte, 40), 65, true},
		{make([]byte, 32), -1, true},
	}
	for _, test := range tests {
		_, err := NewNibblePath(test.buf, test.n)
		if (err != nil) != test.fail {
			t.Errorf("NewNibblePath(%x, %d): unexpected error state: %v", test.buf, test.n, err)
		}
	}
}

func TestNibblePath_GetNibble(t *testing.T) {
	path, err := NewNibblePath([]byte{0x12, 0x34}, 4)
	if err != nil {
		t.Fatalf("failed to create path: %v", err)
	}
	for i, want := range []byte{1, 2, 3, 4} {
		if got := path.GetNibble(i); got != want {
			t.Errorf("nibble %d: got %d, want %d", i, got, want)
		}
	}
	if got := path.String(); got != "1234" {
		t.Errorf("unexpected string: %s", got)
	}
}

func TestNibblePath_NibblesBeyondLengthAreZero(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 100; round++ {
		buf := make([]byte, 32)
		r.Read(buf)
		n := r.Intn(MaxNibbles + 1)
		path, err := NewNibblePath(buf, n)
		if err != nil {
			t.Fatalf("failed to create path: %v", err)
		}
		for i := n; i < MaxNibbles+4; i++ {
			if got := path.GetNibble(i); got != 0 {
				t.Fatalf("nibble %d of path with %d nibbles is %d", i, n, got)
			}
		}
		if path.GetNibble(-1) != 0 {
			t.Errorf("negative positions should read as 0")
		}
	}
}

func TestNibblePath_JunkIsIgnored(t *testing.T) {
	a, _ := NewNibblePath([]byte{0x12, 0x3F, 0xFF}, 3)
	b, _ := NewNibblePath([]byte{0x12, 0x30}, 3)
	if !a.Equal(b) {
		t.Errorf("paths should be equal: %v vs %v", a, b)
	}
	if !bytes.Equal(a.Bytes(), []byte{0x12, 0x30}) {
		t.Errorf("unexpected bytes: %x", a.Bytes())
	}
	if got := a.CommonPrefix(b); got != 3 {
		t.Errorf("unexpected common prefix: %d", got)
	}
}

func TestNibblePath_CommonPrefix(t *testing.T) {
	a := NibblePathOf(common.Hash{0x12, 0x34})
	b := NibblePathOf(common.Hash{0x12, 0x35})
	c, _ := NewNibblePath([]byte{0x12}, 1)
	if got := a.CommonPrefix(b); got != 3 {
		t.Errorf("unexpected common prefix: %d", got)
	}
	if got := a.CommonPrefix(a); got != MaxNibbles {
		t.Errorf("unexpected common prefix: %d", got)
	}
	if got := a.CommonPrefix(c); got != 1 {
		t.Errorf("unexpected common prefix: %d", got)
	}
}

func TestNibblePath_FullHashCoversAllNibbles(t *testing.T) {
	hash := common.Sha3([]byte("key"))
	path := NibblePathOf(hash)
	if got, want := path.NumNibbles(), MaxNibbles; got != want {
		t.Fatalf("unexpected length, wanted %d, got %d", want, got)
	}
	if got, want := path.GetNibble(MaxNibbles-1), hash[31]&0xf; got != want {
		t.Errorf("unexpected last nibble, wanted %x, got %x", want, got)
	}
}
