package crypto

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatal("correct password must verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	if string(h1) == string(h2) {
		t.Fatal("two hashes of the same password must differ")
	}
}
