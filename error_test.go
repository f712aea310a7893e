package harvest_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := harvest.Errorf(harvest.ENOTFOUND, "task %q not found", "test")

	assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	assert.Equal(t, "task \"test\" not found", harvest.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, harvest.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, harvest.ErrorMessage(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, harvest.EINTERNAL, harvest.ErrorCode(err))
	assert.Equal(t, "Internal error.", harvest.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	t.Run("keeps cause reachable", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		err := harvest.WrapError(harvest.ENETWORK, cause, "fetch %s", "https://example.com")

		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, "fetch https://example.com", harvest.ErrorMessage(err))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		t.Parallel()

		inner := harvest.Errorf(harvest.EFILESYSTEM, "disk full")
		err := fmt.Errorf("write article: %w", inner)

		assert.Equal(t, harvest.EFILESYSTEM, harvest.ErrorCode(err))
	})
}
