package bind

import (
	"testing"

	perr "glolotto/internal/platform/errors"
)

type rangeArgs struct {
	Start string `json:"start_date" validate:"required,drawdate"`
	End   string `json:"end_date" validate:"required,drawdate"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=500"`
}

func TestDecodeJSON_Success(t *testing.T) {
	got, err := DecodeJSON[rangeArgs]([]byte(`{"start_date":"2024-01-01","end_date":"2024-12-31","limit":5}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Start != "2024-01-01" || got.End != "2024-12-31" || got.Limit != 5 {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeJSON_InvalidJSON(t *testing.T) {
	_, err := DecodeJSON[rangeArgs]([]byte(`{`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON code, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestDecodeJSON_TrailingData(t *testing.T) {
	_, err := DecodeJSON[rangeArgs]([]byte(`{"start_date":"2024-01-01","end_date":"2024-01-02"} {}`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON code, got %v", err)
	}
}

func TestDecodeJSON_EmptyAndNullActAsEmptyObject(t *testing.T) {
	type noArgs struct{}
	for _, raw := range []string{"", "  ", "null"} {
		if _, err := DecodeJSON[noArgs]([]byte(raw)); err != nil {
			t.Fatalf("%q: unexpected %v", raw, err)
		}
	}
	_, err := DecodeJSON[rangeArgs](nil)
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("required fields should fail, got %v", err)
	}
}

func TestDecodeJSON_UnknownFields(t *testing.T) {
	raw := []byte(`{"start_date":"2024-01-01","end_date":"2024-01-02","extra":1}`)
	if _, err := DecodeJSON[rangeArgs](raw); err != nil {
		t.Fatalf("unknown fields allowed by default: %v", err)
	}
	_, err := DecodeJSON[rangeArgs](raw, DecodeOptions{DisallowUnknown: true})
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON code, got %v", err)
	}
}

func TestDecodeJSON_ValidationFieldAndMessage(t *testing.T) {
	_, err := DecodeJSON[rangeArgs]([]byte(`{"start_date":"2024-13-01","end_date":"2024-01-02"}`))
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if e.Field() != "start_date" {
		t.Fatalf("field = %q", e.Field())
	}
	if e.Error() != "start_date must be a date in YYYY-MM-DD format" {
		t.Fatalf("message = %q", e.Error())
	}

	_, err = DecodeJSON[rangeArgs]([]byte(`{"start_date":"2024-01-01","end_date":"2024-01-02","limit":900}`))
	if err == nil || err.Error() != "limit must be at most 500" {
		t.Fatalf("max message = %v", err)
	}
}

func TestVar(t *testing.T) {
	if err := Var("limit", 3, "min=1"); err != nil {
		t.Fatalf("unexpected %v", err)
	}
	err := Var("limit", 0, "min=1")
	e, ok := perr.As(err)
	if !ok || e.Field() != "limit" || e.Error() != "limit must be at least 1" {
		t.Fatalf("got %v", err)
	}
	if err := Var("date", "2024-02-30", "drawdate"); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("invalid calendar date should fail, got %v", err)
	}
}

func TestStruct_InvalidTarget(t *testing.T) {
	if err := Struct(42); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("non struct should map to JSON code, got %v", err)
	}
}

func TestValidationFieldAndMessage_NonValidator(t *testing.T) {
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil -> %q %q", f, m)
	}
	if f, m := ValidationFieldAndMessage(perr.Newf(perr.ErrorCodeUnknown, "x")); f != "" || m != "x" {
		t.Fatalf("plain -> %q %q", f, m)
	}
}

func TestGet_Singleton(t *testing.T) {
	if Get() != Init() {
		t.Fatalf("expected same instance")
	}
}
