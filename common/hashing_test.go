package common

import (
	"sync"
	"testing"
)

func TestHashing_KnownDigests(t *testing.T) {
	tests := []struct {
		name  string
		hash  func(...[]byte) Hash
		input string
		want  string
	}{
		{"sha256", Sha256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"sha256", Sha256, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"sha3", Sha3, "", "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
		{"sha3", Sha3, "abc", "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
	}
	for _, test := range tests {
		want, err := HashFromString(test.want)
		if err != nil {
			t.Fatalf("invalid test input: %v", err)
		}
		if got := test.hash([]byte(test.input)); got != want {
			t.Errorf("unexpected %s digest of %q, wanted %v, got %v", test.name, test.input, want, got)
		}
	}
}

func TestHashing_PartsAreConcatenated(t *testing.T) {
	for _, hash := range []func(...[]byte) Hash{Sha256, Sha3} {
		want := hash([]byte("abc"))
		if got := hash([]byte("a"), nil, []byte("bc")); got != want {
			t.Errorf("split input hashes to %v, wanted %v", got, want)
		}
		if got := hash(); got != hash([]byte{}) {
			t.Errorf("missing parts should hash like empty input")
		}
	}
}

func TestHashing_CanBeUsedConcurrently(t *testing.T) {
	want := Sha256([]byte("concurrent"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Sha256([]byte("concurrent")); got != want {
					t.Errorf("unexpected digest %v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
