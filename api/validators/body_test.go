package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/wishlane/wishlane-backend/pkg/errors"
)

type samplePayload struct {
	Title string `json:"title" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"gifts"}`))
	var dest samplePayload
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dest.Title != "gifts" {
		t.Fatalf("unexpected decode result: %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"gifts","sneaky":true}`))
	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldDetails(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email"}`))
	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field detail map, got %T", typed.Details())
	}
	if details["title"] != "is required" {
		t.Fatalf("expected title detail, got %+v", details)
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("expected email detail, got %+v", details)
	}
}
