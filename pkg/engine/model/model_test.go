package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateValueEqualSameType(t *testing.T) {
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").Equal(StringValue("b")))
	assert.True(t, IntegerValue(3).Equal(IntegerValue(3)))
	assert.True(t, BoolValue(true).Equal(BoolValue(true)))
}

func TestStateValueEqualCrossNumeric(t *testing.T) {
	assert.True(t, IntegerValue(3).Equal(FloatValue(3.0)))
	assert.True(t, FloatValue(3.5).Equal(FloatValue(3.5)))
	assert.False(t, IntegerValue(3).Equal(FloatValue(3.5)))
}

func TestStateValueEqualCrossIncompatible(t *testing.T) {
	assert.False(t, StringValue("3").Equal(IntegerValue(3)))
	assert.False(t, BoolValue(true).Equal(StringValue("true")))
}

func TestStateValueCompare(t *testing.T) {
	c, ok := IntegerValue(1).Compare(IntegerValue(2))
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = FloatValue(2.0).Compare(IntegerValue(2))
	assert.True(t, ok)
	assert.Equal(t, 0, c)

	_, ok = StringValue("x").Compare(IntegerValue(1))
	assert.False(t, ok)
}

func TestStateValueString(t *testing.T) {
	assert.Equal(t, "42", IntegerValue(42).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "hello", StringValue("hello").String())
}
