package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Email:        "  alice@example.com  ",
		Password:     "  pass1234  ",
		BusinessName: " My Shop ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "pass1234", req.Password)
	assert.Equal(t, "My Shop", req.BusinessName)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	notes := "customer <script>alert('x')</script> request"
	req := ReviewRequest{
		Notes: notes,
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Notes, "&lt;script&gt;")
	assert.NotContains(t, req.Notes, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	name := "  Updated Business Name  "
	req := UpdateProfileRequest{
		BusinessName: &name,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Updated Business Name", *req.BusinessName)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := UpdateProfileRequest{
		BusinessName: nil,
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.BusinessName)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"ref-001",
		"REF_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"ref 001",     // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestSanitizeStruct_ProductRequest(t *testing.T) {
	req := ProductRequest{
		SKU:        "  SKU-001  ",
		Name:       "  Widget <b>Pro</b>  ",
		Dimensions: "  10x10x10  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "SKU-001", req.SKU)
	assert.Equal(t, "Widget &lt;b&gt;Pro&lt;/b&gt;", req.Name)
	assert.Equal(t, "10x10x10", req.Dimensions)
}
