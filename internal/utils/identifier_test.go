package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("ram@example.com"))
	assert.True(t, IsEmail("ram.bahadur+tag@students.tu.edu.np"))

	assert.False(t, IsEmail("rambahadur"))
	assert.False(t, IsEmail("ram bahadur@example.com"))
	assert.False(t, IsEmail("ram@localhost"))
	assert.False(t, IsEmail(""))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "rambahadur", NormalizeUsername("RamBahadur"))
	assert.Equal(t, "ram_01", NormalizeUsername("  Ram_01  "))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("ram"))
	assert.True(t, ValidUsername("ram_bahadur_01"))
	assert.True(t, ValidUsername("a2345678901234567890"))

	assert.False(t, ValidUsername("ab"))                    // too short
	assert.False(t, ValidUsername("a23456789012345678901")) // too long
	assert.False(t, ValidUsername("Ram"))                   // not folded
	assert.False(t, ValidUsername("ram-bahadur"))
	assert.False(t, ValidUsername("ram bahadur"))
}
