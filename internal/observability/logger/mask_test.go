package logger

import "testing"

func TestMaskAuthorization(t *testing.T) {
	got := MaskAuthorization("Bearer abcdef1234")
	want := "Bearer ****1234"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskCookie(t *testing.T) {
	got := MaskCookie("session=abcdef1234; other=xyz")
	want := "session=****1234; other=****xyz"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskJSON(t *testing.T) {
	input := map[string]any{
		"password": "hunter2",
		"token":    "abc12345",
		"nested": map[string]any{
			"api_key": "key_12345678",
		},
	}
	masked := MaskJSON(input)
	if masked["password"] != "****ter2" {
		t.Fatalf("expected masked password, got %v", masked["password"])
	}
	if masked["token"] != "****2345" {
		t.Fatalf("expected masked token, got %v", masked["token"])
	}
	nested, ok := masked["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map")
	}
	if nested["api_key"] != "****5678" {
		t.Fatalf("expected masked api_key, got %v", nested["api_key"])
	}
}

func TestMaskIBAN(t *testing.T) {
	got := MaskIBAN("AO06000600000100037131174")
	want := "AO****1174"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if MaskIBAN("") != "" {
		t.Fatalf("expected empty input to stay empty")
	}
}

func TestMaskJSONCustomerFields(t *testing.T) {
	input := map[string]any{
		"iban":  "AO06000600000100037131174",
		"phone": "923000001",
		"name":  "Amadeu Jose",
	}
	masked := MaskJSON(input)
	if masked["iban"] != "****1174" {
		t.Fatalf("expected masked iban, got %v", masked["iban"])
	}
	if masked["phone"] != "****0001" {
		t.Fatalf("expected masked phone, got %v", masked["phone"])
	}
	if masked["name"] != "Amadeu Jose" {
		t.Fatalf("expected name untouched, got %v", masked["name"])
	}
}
