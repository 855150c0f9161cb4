package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		wantKind Kind
		wantText string
	}{
		{input: "42", wantKind: KindNumber, wantText: "42"},
		{input: "-3.5", wantKind: KindNumber, wantText: "-3.5"},
		{input: "1.50", wantKind: KindNumber, wantText: "1.50"},
		{input: "007", wantKind: KindNumber, wantText: "007"},
		{input: "-007", wantKind: KindNumber, wantText: "-007"},
		{input: "-00.50", wantKind: KindNumber, wantText: "-00.50"},
		{input: "1e3", wantKind: KindText, wantText: "1e3"},
		{input: "12abc", wantKind: KindText, wantText: "12abc"},
		{input: "", wantKind: KindText, wantText: ""},
		{input: "Tokyo", wantKind: KindText, wantText: "Tokyo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			v := ParseCell(tt.input)
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantText, v.String())
		})
	}
}

func TestValue_Nullable(t *testing.T) {
	t.Parallel()

	_, ok := Null().Nullable()
	assert.False(t, ok)

	text, ok := Text("").Nullable()
	assert.True(t, ok)
	assert.Equal(t, "", text)

	text, ok = Bool(true).Nullable()
	assert.True(t, ok)
	assert.Equal(t, "true", text)
}

func TestValue_Truthy(t *testing.T) {
	t.Parallel()

	assert.False(t, Null().Truthy())
	assert.False(t, Text("").Truthy())
	assert.True(t, Text("x").Truthy())
	assert.False(t, ParseCell("0.0").Truthy())
	assert.True(t, ParseCell("2").Truthy())
	assert.True(t, Bool(true).Truthy())
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{name: "numbers", a: ParseCell("2"), b: ParseCell("10"), want: -1},
		{name: "equal with different scale", a: ParseCell("1.0"), b: ParseCell("1"), want: 0},
		{name: "text", a: Text("b"), b: Text("a"), want: 1},
		{name: "null lowest", a: Null(), b: Text(""), want: -1},
		{name: "null equal", a: Null(), b: Null(), want: 0},
		{name: "number and text as text", a: ParseCell("2"), b: Text("10x"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op   string
		a, b Value
		want string
		null bool
	}{
		{op: "+", a: ParseCell("1.5"), b: ParseCell("2"), want: "3.5"},
		{op: "-", a: ParseCell("1"), b: ParseCell("3"), want: "-2"},
		{op: "*", a: ParseCell("1.5"), b: ParseCell("4"), want: "6"},
		{op: "/", a: ParseCell("1"), b: ParseCell("3"), want: "0.3333333333"},
		{op: "/", a: ParseCell("10"), b: ParseCell("4"), want: "2.5"},
		{op: "/", a: ParseCell("1"), b: ParseCell("0"), null: true},
		{op: "%", a: ParseCell("10"), b: ParseCell("3"), want: "1"},
		{op: "%", a: ParseCell("10"), b: ParseCell("0"), null: true},
		{op: "+", a: Text("x"), b: ParseCell("1"), null: true},
		{op: "+", a: Null(), b: ParseCell("1"), null: true},
		{op: "^", a: ParseCell("1"), b: ParseCell("1"), null: true},
		{op: "||", a: Text("a"), b: ParseCell("1"), want: "a1"},
		{op: "||", a: Null(), b: Text("b"), want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+tt.op+tt.b.String(), func(t *testing.T) {
			t.Parallel()

			got := Arithmetic(tt.op, tt.a, tt.b)
			if tt.null {
				assert.True(t, got.IsNull())
				return
			}
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAverage(t *testing.T) {
	t.Parallel()

	assert.True(t, Average(decimal.Zero, 0).IsNull())
	assert.Equal(t, "2.5", Average(decimal.NewFromInt(5), 2).String())
}
