package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 19.076001, RoundFloat(19.0760005, 6))
	assert.Equal(t, 72.8778, RoundFloat(72.87779999, 4))
	assert.Equal(t, -7.55716, RoundFloat(-7.557155997, 5))
}

func TestReverseG(t *testing.T) {
	arr := []int32{1, 2, 3, 4, 5}
	reversed := ReverseG(arr)
	assert.Equal(t, []int32{5, 4, 3, 2, 1}, reversed)
	// original untouched
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, arr)

	assert.Equal(t, []string{}, ReverseG([]string{}))
}

func TestBoolToFloat(t *testing.T) {
	assert.Equal(t, 1.0, BoolToFloat(true))
	assert.Equal(t, 0.0, BoolToFloat(false))
}
