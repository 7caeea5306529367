package ble

import "testing"

func TestOpenUnknownTransport(t *testing.T) {
	if _, _, err := Open("bluez", ""); err == nil {
		t.Error("Open(bluez) should fail")
	}
}

func TestOpenTinyGo(t *testing.T) {
	tr, closer, err := Open("tinygo", "hci0")
	if err != nil {
		t.Fatalf("Open(tinygo) error: %v", err)
	}
	if _, ok := tr.(*TinyGoTransport); !ok {
		t.Errorf("Open(tinygo) = %T", tr)
	}
	if err := closer(); err != nil {
		t.Errorf("closer: %v", err)
	}
}
