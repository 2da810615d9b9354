package model

import (
	"encoding/json"
	"testing"
)

type patch struct {
	Name Optional[string] `json:"name,omitzero"`
	Age  Optional[int]    `json:"age,omitzero"`
}

func TestOptionalDecodeStates(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"name":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.Name.IsPresent() || !p.Name.IsNull() {
		t.Errorf("name: present=%v null=%v, want present null", p.Name.IsPresent(), p.Name.IsNull())
	}
	if _, ok := p.Name.Get(); ok {
		t.Error("Get on null must report false")
	}
	if p.Name.Ptr() == nil || *p.Name.Ptr() != "" {
		t.Error("Ptr on null must point at the zero value")
	}
	if p.Age.IsPresent() || p.Age.Ptr() != nil {
		t.Error("age was not sent and must be absent")
	}
	if got := p.Age.OrElse(7); got != 7 {
		t.Errorf("OrElse = %d, want 7", got)
	}
}

func TestOptionalDecodeValue(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"name":"Ada","age":36}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v, ok := p.Name.Get(); !ok || v != "Ada" {
		t.Errorf("name = %q, %v", v, ok)
	}
	if v, ok := p.Age.Get(); !ok || v != 36 {
		t.Errorf("age = %d, %v", v, ok)
	}
}

func TestOptionalDecodeTypeMismatch(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"age":"old"}`), &p); err == nil {
		t.Fatal("expected type error")
	}
}

func TestOptionalEncodeOmitsAbsent(t *testing.T) {
	b, err := json.Marshal(patch{Name: Some("Ada")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"name":"Ada"}` {
		t.Fatalf("got %s", b)
	}
}
