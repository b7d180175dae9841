package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Collects(t *testing.T) {
	var v Errors
	v.Required("name", "  ")
	v.Email("email", "not-an-email")
	v.Phone("phone", "555-0100")
	v.MaxLen("notes", "abcdef", 3)

	assert.False(t, v.OK())
	assert.Len(t, v.Fields(), 3)
	assert.Equal(t, "name is required; email must be a valid email address; notes must be at most 3 characters", v.Message())
}

func TestErrors_Empty(t *testing.T) {
	var v Errors
	v.Required("name", "Jane")
	v.Email("email", "jane@example.com")
	assert.True(t, v.OK())
	assert.Equal(t, "", v.Message())
}

func TestIsPhoneLike(t *testing.T) {
	assert.True(t, IsPhoneLike("+1 (555) 123-4567"))
	assert.True(t, IsPhoneLike("0312345678"))
	assert.False(t, IsPhoneLike("12345"))
	assert.False(t, IsPhoneLike("call me"))
	assert.False(t, IsPhoneLike("+-() -- ()"))
}
