package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	t.Run("SetUserContext and GetUserIDFromContext", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), uint(100), "user@example.com")

		id, ok := GetUserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, uint(100), id)
		assert.Equal(t, "user@example.com", GetUserEmailFromContext(ctx))
	})

	t.Run("Empty context", func(t *testing.T) {
		_, ok := GetUserIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("Zero user id is anonymous", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), 0, "")
		_, ok := GetUserIDFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestSessionKey(t *testing.T) {
	_, ok := GetSessionKeyFromContext(context.Background())
	assert.False(t, ok)

	ctx := SetSessionKey(context.Background(), "sess-1")
	key, ok := GetSessionKeyFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sess-1", key)
	assert.False(t, IsNewSession(ctx))
	assert.True(t, IsNewSession(WithNewSession(ctx)))
}

func TestIsInternalRequest(t *testing.T) {
	assert.False(t, IsInternalRequest(context.Background()))
	assert.True(t, IsInternalRequest(WithInternalRequest(context.Background())))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple", "Product Name", "product-name"},
		{"With Special Chars", "Product & Name!", "product-name"},
		{"Multiple Spaces", "  Linen   Shirt  ", "linen-shirt"},
		{"Digits", "Mug 350ml", "mug-350ml"},
		{"Non ASCII dropped", "Café Crème", "caf-cr-me"},
		{"Empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "nope", http.StatusForbidden)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "nope", body["error"])
}

func TestPtrString(t *testing.T) {
	s := "x"
	assert.Equal(t, "x", PtrString(&s))
	assert.Equal(t, "", PtrString(nil))
}
