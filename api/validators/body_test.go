package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=10"`
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","quantity":2}`))
	var dest samplePayload
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Email != "a@b.com" || dest.Quantity != 2 {
		t.Fatalf("unexpected decode result %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","quantity":2,"extra":true}`))
	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email","quantity":99}`))
	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected detail map, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if details["quantity"] != "must be at most 10" {
		t.Fatalf("unexpected quantity detail %q", details["quantity"])
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 0); got != "hello" {
		t.Fatalf("expected trimmed string, got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Fatalf("expected clipped string, got %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Balls@ORY.com "); got != "balls@ory.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}
