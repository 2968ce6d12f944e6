package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

func TestTransition(t *testing.T) {
	all := []Status{Pending, Confirmed, Renting, Returned, Cancelled}
	allowed := map[[2]Status]bool{
		{Pending, Confirmed}:   true,
		{Pending, Cancelled}:   true,
		{Confirmed, Renting}:   true,
		{Confirmed, Cancelled}: true,
		{Renting, Returned}:    true,
		{Renting, Cancelled}:   true,
	}
	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				err := from.Transition(to)
				if allowed[[2]Status{from, to}] {
					assert.NoError(t, err)
					return
				}
				assert.ErrorIs(t, err, inErrors.ErrInvalidState)
			})
		}
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, Returned.IsTerminal())
	assert.True(t, Cancelled.IsTerminal())
	assert.False(t, Pending.IsTerminal())
	assert.False(t, Renting.IsTerminal())
}

func TestParse(t *testing.T) {
	st, err := Parse("renting")
	assert.NoError(t, err)
	assert.Equal(t, Renting, st)

	_, err = Parse("shipped")
	assert.ErrorIs(t, err, inErrors.ErrValidation)
}
