package shellvars

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		dump string
		want FieldMap
	}{
		{
			name: "single-line values",
			dump: "id=\"7c9e\"\nname=\"gpu-lease\"\nstatus=\"ACTIVE\"\n",
			want: FieldMap{"id": "7c9e", "name": "gpu-lease", "status": "ACTIVE"},
		},
		{
			name: "empty value",
			dump: `events=""`,
			want: FieldMap{"events": ""},
		},
		{
			name: "multi-line value closed by end of input",
			dump: "k=\"line1\nline2\nline3\"",
			want: FieldMap{"k": "line1\nline2\nline3"},
		},
		{
			name: "multi-line value closed by next field",
			dump: "reservations=\"{\\\"id\\\": 1}\n{\\\"id\\\": 2}\"\nname=\"lease-a\"\n",
			want: FieldMap{
				"reservations": "{\\\"id\\\": 1}\n{\\\"id\\\": 2}",
				"name":         "lease-a",
			},
		},
		{
			name: "escaped quote at end keeps value open",
			dump: "a=\"say \\\"hi\\\"\ntail\"\nb=\"x\"",
			want: FieldMap{"a": "say \\\"hi\\\"\ntail", "b": "x"},
		},
		{
			name: "continuation lines kept verbatim",
			dump: "k=\"first\n   indented  \n\nlast\"",
			want: FieldMap{"k": "first\n   indented  \n\nlast"},
		},
		{
			name: "crlf line endings",
			dump: "a=\"1\"\r\nb=\"2\"\r\n",
			want: FieldMap{"a": "1", "b": "2"},
		},
		{
			name: "only one trailing quote stripped",
			dump: "k=\"multi\nends with quote\"\"",
			want: FieldMap{"k": "multi\nends with quote\""},
		},
		{
			name: "empty dump",
			dump: "",
			want: FieldMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := Tokenize(tt.dump)
			if len(warnings) != 0 {
				t.Errorf("Tokenize() warnings = %v, want none", warnings)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenize_OrderIndependent(t *testing.T) {
	lines := []string{`a="1"`, `b="two words"`, `c=""`, `d="x=y"`}
	want := FieldMap{"a": "1", "b": "two words", "c": "", "d": "x=y"}

	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}}
	for _, order := range orders {
		var sb strings.Builder
		for _, i := range order {
			sb.WriteString(lines[i])
			sb.WriteByte('\n')
		}
		got, _ := Tokenize(sb.String())
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("order %v mismatch (-want +got):\n%s", order, diff)
		}
	}
}

func TestFieldMap_EncodeRoundTrip(t *testing.T) {
	original := FieldMap{
		"id":         "0b4c2f1e",
		"name":       "lease-42",
		"start_date": "2026-01-01T00:00:00.000000",
		"empty":      "",
	}

	got, warnings := Tokenize(original.Encode())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if diff := cmp.Diff(original, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, _ := Tokenize(got.Encode())
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("second round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldMap_EncodeMultiLine(t *testing.T) {
	kept := FieldMap{"a": "line1\nline2"}
	got, warnings := Tokenize(kept.Encode())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if diff := cmp.Diff(kept, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// a first line ending in a quote closes the field early
	cut := FieldMap{"a": "x\"\ny"}
	got, warnings = Tokenize(cut.Encode())
	if got.Get("a") != "x" {
		t.Errorf("a = %q, want %q", got.Get("a"), "x")
	}
	var malformed *MalformedLineError
	if len(warnings) != 1 || !errors.As(warnings[0], &malformed) || malformed.Line != 2 {
		t.Errorf("warnings = %v, want one malformed line 2", warnings)
	}
}

func TestTokenize_MalformedLines(t *testing.T) {
	dump := "garbage before\n\nname=\"ok\"\n"
	got, warnings := Tokenize(dump)

	if got.Get("name") != "ok" {
		t.Errorf("name = %q, want %q", got.Get("name"), "ok")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	var malformed *MalformedLineError
	if !errors.As(warnings[0], &malformed) {
		t.Fatalf("expected *MalformedLineError, got %T", warnings[0])
	}
	if malformed.Line != 1 || malformed.Text != "garbage before" {
		t.Errorf("unexpected warning contents: %+v", malformed)
	}
}

func TestTokenize_DuplicatePolicy(t *testing.T) {
	dump := "name=\"first\"\nname=\"second\"\n"

	tests := []struct {
		name   string
		opts   []Option
		want   string
		policy DuplicatePolicy
	}{
		{name: "default keeps last", want: "second", policy: DuplicateLastWins},
		{name: "last wins", opts: []Option{WithDuplicatePolicy(DuplicateLastWins)}, want: "second", policy: DuplicateLastWins},
		{name: "first wins", opts: []Option{WithDuplicatePolicy(DuplicateFirstWins)}, want: "first", policy: DuplicateFirstWins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := Tokenize(dump, tt.opts...)
			if got.Get("name") != tt.want {
				t.Errorf("name = %q, want %q", got.Get("name"), tt.want)
			}
			if len(warnings) != 1 {
				t.Fatalf("expected 1 warning, got %d", len(warnings))
			}
			var dup *DuplicateKeyError
			if !errors.As(warnings[0], &dup) {
				t.Fatalf("expected *DuplicateKeyError, got %T", warnings[0])
			}
			if dup.Key != "name" || dup.Line != 2 || dup.Policy != tt.policy {
				t.Errorf("unexpected warning contents: %+v", dup)
			}
		})
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    DuplicatePolicy
		wantErr bool
	}{
		{input: "", want: DuplicateLastWins},
		{input: "last", want: DuplicateLastWins},
		{input: " FIRST ", want: DuplicateFirstWins},
		{input: "merge", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuplicatePolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuplicatePolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuplicatePolicy() = %q, want %q", got, tt.want)
			}
		})
	}
}
