package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knightarena/game"
)

func TestRoleFor(t *testing.T) {
	white := RoleFor(0)
	require.True(t, white.IsPlayer())
	assert.Equal(t, game.SideWhite, *white.Side)

	black := RoleFor(1)
	require.True(t, black.IsPlayer())
	assert.Equal(t, game.SideBlack, *black.Side)

	for _, i := range []int{2, 3, 10} {
		r := RoleFor(i)
		assert.False(t, r.IsPlayer())
		assert.Equal(t, "spectator", r.String())
	}
}
