package parse

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeNested(t *testing.T) {
	tests := []struct {
		name      string
		record    Object
		want      any
		wantError bool
	}{
		{
			name:   "missing field is absent",
			record: Object{"amount": "1"},
		},
		{
			name:   "number field is absent",
			record: Object{"resource_properties": json.Number("7")},
		},
		{
			name:   "object field is absent",
			record: Object{"resource_properties": map[string]any{"name": "x"}},
		},
		{
			name:   "null field is absent",
			record: Object{"resource_properties": nil},
		},
		{
			name:   "string holding an object",
			record: Object{"resource_properties": `{"name": "gpu-a100"}`},
			want:   map[string]any{"name": "gpu-a100"},
		},
		{
			name:      "string that is not JSON",
			record:    Object{"resource_properties": `name=gpu-a100`},
			wantError: true,
		},
		{
			name:      "empty string",
			record:    Object{"resource_properties": ""},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeNested(tt.record, "resource_properties")
			if tt.wantError {
				var fieldErr *FieldError
				if !errors.As(err, &fieldErr) {
					t.Fatalf("expected *FieldError, got %v", err)
				}
				if fieldErr.Field != "resource_properties" {
					t.Errorf("Field = %q", fieldErr.Field)
				}
				if got != nil {
					t.Errorf("expected nil value on failure, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected absent, got %v", got)
				}
				return
			}
			gotMap, ok := got.(map[string]any)
			if !ok || gotMap["name"] != tt.want.(map[string]any)["name"] {
				t.Errorf("DecodeNested() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeNestedAs(t *testing.T) {
	type properties struct {
		Name string `json:"name"`
	}

	t.Run("typed decode", func(t *testing.T) {
		got, found, err := DecodeNestedAs[properties](Object{"rp": `{"name":"gpu-a100","extra":1}`}, "rp")
		if err != nil || !found {
			t.Fatalf("found=%v err=%v", found, err)
		}
		if got.Name != "gpu-a100" {
			t.Errorf("Name = %q", got.Name)
		}
	})

	t.Run("absent", func(t *testing.T) {
		_, found, err := DecodeNestedAs[properties](Object{}, "rp")
		if found || err != nil {
			t.Errorf("found=%v err=%v, want false and nil", found, err)
		}
	})

	t.Run("invalid without repair", func(t *testing.T) {
		got, found, err := DecodeNestedAs[properties](Object{"rp": `{name: 'gpu'}`}, "rp")
		if !found || err == nil {
			t.Fatalf("found=%v err=%v, want true and error", found, err)
		}
		if got != (properties{}) {
			t.Errorf("expected zero value, got %+v", got)
		}
	})

	t.Run("invalid with repair", func(t *testing.T) {
		got, found, err := DecodeNestedAs[properties](Object{"rp": `{name: 'gpu'}`}, "rp", WithRepair())
		if !found || err != nil {
			t.Fatalf("found=%v err=%v", found, err)
		}
		if got.Name != "gpu" {
			t.Errorf("Name = %q", got.Name)
		}
	})
}

func TestDecodeNestedAs_StringTarget(t *testing.T) {
	record := Object{"quoted": `"gpu-a100"`, "bare": `gpu-a100`}

	for _, repair := range []bool{false, true} {
		var opts []Option
		if repair {
			opts = append(opts, WithRepair())
		}

		got, found, err := DecodeNestedAs[string](record, "quoted", opts...)
		if !found || err != nil || got != "gpu-a100" {
			t.Errorf("repair=%v quoted: got=%q found=%v err=%v", repair, got, found, err)
		}

	}

	if got, _, err := DecodeNestedAs[string](record, "bare"); err == nil {
		t.Errorf("bare: expected error, got %q", got)
	}
}

func TestDecodeNestedAs_TrailingData(t *testing.T) {
	type properties struct {
		Name string `json:"name"`
	}
	_, found, err := DecodeNestedAs[properties](Object{"rp": `{"name":"a"} {"name":"b"}`}, "rp")
	var fieldErr *FieldError
	if !found || !errors.As(err, &fieldErr) {
		t.Errorf("found=%v err=%v, want *FieldError", found, err)
	}
}

func TestDecodeNested_Repair(t *testing.T) {
	got, err := DecodeNested(Object{"rp": `{'name': 'gpu'}`}, "rp", WithRepair())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(map[string]any)["name"] != "gpu" {
		t.Errorf("DecodeNested() = %v", got)
	}
}
