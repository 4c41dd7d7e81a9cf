package validation

import (
	"errors"
	"strings"
	"testing"
)

const petSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "kind": {"enum": ["cat", "dog"]},
    "tags": {"type": "array", "items": {"type": "string", "minLength": 1}}
  }
}`

func TestSchemaDecode(t *testing.T) {
	s := MustCompile("pet", petSchema)

	t.Run("valid document decodes", func(t *testing.T) {
		var dst struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		}
		if err := s.Decode([]byte(`{"name":"Rex","kind":"dog"}`), &dst); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dst.Name != "Rex" || dst.Kind != "dog" {
			t.Errorf("unexpected decode result %+v", dst)
		}
	})

	tests := []struct {
		name      string
		body      string
		wantField string
		wantIn    string
	}{
		{"empty body", ``, "", "required"},
		{"malformed", `{"name":`, "", "malformed"},
		{"missing required", `{"kind":"cat"}`, "", "name"},
		{"unknown field", `{"name":"Rex","owner":"me"}`, "", "owner"},
		{"bad enum", `{"name":"Rex","kind":"fish"}`, "kind", ""},
		{"nested index", `{"name":"Rex","tags":["ok",""]}`, "tags[1]", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Decode([]byte(tt.body), nil)
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q (message %q)", verr.Field, tt.wantField, verr.Message)
			}
			if tt.wantIn != "" && !strings.Contains(verr.Error(), tt.wantIn) {
				t.Errorf("error %q does not mention %q", verr.Error(), tt.wantIn)
			}
		})
	}
}

func TestPointerToPath(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"/title":             "title",
		"/subtasks/0/title":  "subtasks[0].title",
		"/a~1b":              "a/b",
	}
	for in, want := range cases {
		if got := pointerToPath(in); got != want {
			t.Errorf("pointerToPath(%q) = %q, want %q", in, got, want)
		}
	}
}
