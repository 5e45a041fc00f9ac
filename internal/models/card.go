// internal/models/card.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Color is the color group of a card. Wild and skip cards carry their kind as color.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorWild   Color = "wild"
	ColorSkip   Color = "skip"
)

// NumberColors are the four color groups that carry numbered cards.
var NumberColors = []Color{ColorRed, ColorYellow, ColorBlue, ColorGreen}

// Value is the face value of a card: 1-12 for numbered cards, or one of the
// ValueWild/ValueSkip markers. On the wire numbered values are JSON numbers and
// the markers are the strings "wild" and "skip".
type Value int

const (
	ValueWild Value = -1
	ValueSkip Value = -2

	MinNumber Value = 1
	MaxNumber Value = 12
)

// Card is an immutable value. Two cards are the same card for gameplay purposes
// when their color and value are equal, so plain == comparison is the match rule.
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// NewNumberCard builds a numbered card of the given color.
func NewNumberCard(color Color, n int) Card {
	return Card{Color: color, Value: Value(n)}
}

// WildCard and SkipCard are the two special cards.
var (
	WildCard = Card{Color: ColorWild, Value: ValueWild}
	SkipCard = Card{Color: ColorSkip, Value: ValueSkip}
)

// IsNumber reports whether the value is in the numbered range.
func (v Value) IsNumber() bool {
	return v >= MinNumber && v <= MaxNumber
}

func (v Value) String() string {
	switch v {
	case ValueWild:
		return "wild"
	case ValueSkip:
		return "skip"
	}
	return strconv.Itoa(int(v))
}

// MarshalJSON writes numbered values as numbers and special values as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v {
	case ValueWild, ValueSkip:
		return json.Marshal(v.String())
	}
	return []byte(strconv.Itoa(int(v))), nil
}

// UnmarshalJSON accepts a JSON number or one of the strings "wild"/"skip".
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "wild":
			*v = ValueWild
		case "skip":
			*v = ValueSkip
		default:
			return fmt.Errorf("unknown card value %q", s)
		}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("card value must be a number or \"wild\"/\"skip\": %w", err)
	}
	if Value(n) == ValueWild || Value(n) == ValueSkip {
		return fmt.Errorf("card value %d is reserved, use \"wild\"/\"skip\"", n)
	}
	*v = Value(n)
	return nil
}

// Valid reports whether the card is one that can exist in a deck.
func (c Card) Valid() bool {
	switch c.Color {
	case ColorRed, ColorYellow, ColorBlue, ColorGreen:
		return c.Value.IsNumber()
	case ColorWild:
		return c.Value == ValueWild
	case ColorSkip:
		return c.Value == ValueSkip
	}
	return false
}

func (c Card) String() string {
	if c.Color == ColorWild || c.Color == ColorSkip {
		return string(c.Color)
	}
	return fmt.Sprintf("%s %s", c.Color, c.Value)
}
