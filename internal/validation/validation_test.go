package validation

import (
	"strings"
	"testing"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/debemdeboas/quill/internal/model"
)

func bounds() config.ContentConfig {
	return config.Default().Content
}

func TestPost(t *testing.T) {
	testCases := []struct {
		name        string
		input       model.PostInput
		wantDetails int
	}{
		{"valid", model.PostInput{Title: "My Post", Content: "Long enough content"}, 0},
		{"short title", model.PostInput{Title: "Hi", Content: "Long enough content"}, 1},
		{"short content", model.PostInput{Title: "My Post", Content: "tiny"}, 1},
		{"both empty", model.PostInput{}, 2},
		{"whitespace padded title", model.PostInput{Title: "  ab  ", Content: "Long enough content"}, 1},
		{"title too long", model.PostInput{Title: strings.Repeat("t", 256), Content: "Long enough content"}, 1},
		{"content too long", model.PostInput{Title: "My Post", Content: strings.Repeat("c", 50001)}, 1},
		{"multibyte counted as runes", model.PostInput{Title: "éèà", Content: strings.Repeat("ü", 10)}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Post(tc.input, bounds())
			if tc.wantDetails == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var ae *apperr.Error
			if err == nil {
				t.Fatal("Expected validation error")
			}
			ae = err.(*apperr.Error)
			if ae.Kind != apperr.KindValidationFailed {
				t.Errorf("Expected ValidationFailed, got %s", ae.Kind)
			}
			if len(ae.Details) != tc.wantDetails {
				t.Errorf("Expected %d details, got %v", tc.wantDetails, ae.Details)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	t.Run("valid register request", func(t *testing.T) {
		req := model.RegisterRequest{Name: "John", Email: "john@example.com", Password: "password123"}
		if err := Struct(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("invalid register request", func(t *testing.T) {
		req := model.RegisterRequest{Name: "", Email: "not-an-email", Password: "short"}
		err := Struct(req)
		if apperr.KindOf(err) != apperr.KindValidationFailed {
			t.Fatalf("Expected ValidationFailed, got %v", err)
		}

		details := strings.Join(err.(*apperr.Error).Details, "; ")
		for _, want := range []string{"name is required", "email must be a valid email address", "password must be at least 8 characters"} {
			if !strings.Contains(details, want) {
				t.Errorf("Expected details to contain %q, got %q", want, details)
			}
		}
	})

	t.Run("login request", func(t *testing.T) {
		if err := Struct(model.LoginRequest{Email: "john@example.com"}); err == nil {
			t.Error("Expected missing password to fail")
		}
	})
}
