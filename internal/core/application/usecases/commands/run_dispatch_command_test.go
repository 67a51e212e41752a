package commands_test

import (
	"testing"

	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunDispatchCommand(t *testing.T) {
	t.Run("nil cap means unbounded", func(t *testing.T) {
		cmd, err := commands.NewRunDispatchCommand(nil)
		require.NoError(t, err)
		assert.Nil(t, cmd.MaxAssignments())
	})

	t.Run("cap within bounds", func(t *testing.T) {
		five := 5
		cmd, err := commands.NewRunDispatchCommand(&five)
		require.NoError(t, err)
		assert.Equal(t, 5, *cmd.MaxAssignments())
	})

	t.Run("cap out of bounds", func(t *testing.T) {
		for _, v := range []int{0, -1, 101} {
			v := v
			_, err := commands.NewRunDispatchCommand(&v)
			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange, v)
		}
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var cmd commands.RunDispatchCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrRunDispatchCommandIsNotConstructed)
	})
}
