package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardJSONShape(t *testing.T) {
	data, err := json.Marshal([]Card{NewNumberCard(ColorRed, 7), WildCard, SkipCard})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"color":"red","value":7},{"color":"wild","value":"wild"},{"color":"skip","value":"skip"}]`, string(data))
}

func TestCardDecodeFromClient(t *testing.T) {
	var c Card
	require.NoError(t, json.Unmarshal([]byte(`{"color":"blue","value":12}`), &c))
	assert.Equal(t, NewNumberCard(ColorBlue, 12), c)

	require.NoError(t, json.Unmarshal([]byte(`{"color":"wild","value":"wild"}`), &c))
	assert.Equal(t, WildCard, c)

	assert.Error(t, json.Unmarshal([]byte(`{"color":"blue","value":"twelve"}`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"color":"blue","value":true}`), &c))
}

func TestCardDecodeRejectsReservedNumbers(t *testing.T) {
	for _, raw := range []string{
		fmt.Sprintf(`{"color":"wild","value":%d}`, int(ValueWild)),
		fmt.Sprintf(`{"color":"skip","value":%d}`, int(ValueSkip)),
	} {
		var c Card
		assert.Error(t, json.Unmarshal([]byte(raw), &c), raw)
		assert.NotEqual(t, WildCard, c)
		assert.NotEqual(t, SkipCard, c)
	}
}

func TestCardValid(t *testing.T) {
	assert.True(t, NewNumberCard(ColorGreen, 1).Valid())
	assert.True(t, WildCard.Valid())
	assert.True(t, SkipCard.Valid())
	assert.False(t, NewNumberCard(ColorGreen, 13).Valid())
	assert.False(t, NewNumberCard(ColorGreen, 0).Valid())
	assert.False(t, Card{Color: ColorWild, Value: 3}.Valid())
	assert.False(t, Card{Color: "purple", Value: 3}.Valid())
}

func TestRemoveCardTakesFirstStructuralMatch(t *testing.T) {
	p := NewPlayer(uuid.New(), "Alice")
	red5 := NewNumberCard(ColorRed, 5)
	p.Hand = []Card{NewNumberCard(ColorBlue, 2), red5, WildCard, red5}

	removed, ok := p.RemoveCard(NewNumberCard(ColorRed, 5))
	require.True(t, ok)
	assert.Equal(t, red5, removed)
	assert.Equal(t, []Card{NewNumberCard(ColorBlue, 2), WildCard, red5}, p.Hand)

	_, ok = p.RemoveCard(NewNumberCard(ColorYellow, 9))
	assert.False(t, ok)
	assert.Len(t, p.Hand, 3)
}

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer(uuid.New(), "Bob")
	assert.Equal(t, 1, p.Phase)
	assert.False(t, p.PhaseComplete)
	assert.NotNil(t, p.Hand)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hand":[]`)
}
