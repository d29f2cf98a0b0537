package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderError(t *testing.T) {
	t.Run("error without cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRenderTimeout, "timeout occurred", nil)

		assert.Equal(t, "timeout occurred", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("error with cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRenderFailed, "render failed", assert.AnError)

		assert.Equal(t, "render failed: "+assert.AnError.Error(), err.Error())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestPaperSize(t *testing.T) {
	assert.Equal(t, PaperSizeReceipt80MM, ParsePaperSize(""))
	assert.Equal(t, PaperSizeReceipt80MM, ParsePaperSize("LETTER"))
	assert.Equal(t, PaperSizeA5, ParsePaperSize("A5"))

	w, h := PaperSizeReceipt58MM.Dimensions()
	assert.Equal(t, 58, w)
	assert.Zero(t, h)
	assert.True(t, PaperSizeReceipt58MM.IsReceipt())
	assert.False(t, PaperSizeA4.IsReceipt())

	assert.Equal(t, ReceiptMargins(), MarginsFor(PaperSizeReceipt80MM))
	assert.Equal(t, DefaultMargins(), MarginsFor(PaperSizeA4))
}
