package models

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("kaka")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if hash == "kaka" {
		t.Fatalf("password stored in the clear")
	}
	if err := checkPassword(hash, "kaka"); err != nil {
		t.Fatalf("checkPassword rejected the right password: %v", err)
	}
	if err := checkPassword(hash, "wrong"); err == nil {
		t.Fatalf("checkPassword accepted a wrong password")
	}
}
