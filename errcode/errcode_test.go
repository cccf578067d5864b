package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"tinygo.org/x/drivers/aht20"
)

func TestOf(t *testing.T) {
	assert.Equal(t, None, Of(nil))
	assert.Equal(t, NoHWKeyFound, Of(NoHWKeyFound))
	assert.Equal(t, WrongKind, Of(fmt.Errorf("building: %w", WrongKind)))
	assert.Equal(t, UnknownBus, Of(&E{C: UnknownBus, Op: "aht20"}))
	assert.Equal(t, Error, Of(errors.New("boom")))
}

func TestEError(t *testing.T) {
	e := Wrap(Timeout, "aht20.read", aht20.ErrTimeout)
	assert.Equal(t, "aht20.read: timeout: "+aht20.ErrTimeout.Error(), e.Error())
	assert.ErrorIs(t, e, aht20.ErrTimeout)
	assert.Equal(t, "invalid_entry", (&E{C: InvalidEntry}).Error())
}

func TestMapDriverErr(t *testing.T) {
	assert.Equal(t, None, MapDriverErr(nil))
	assert.Equal(t, Timeout, MapDriverErr(aht20.ErrTimeout))
	assert.Equal(t, Error, MapDriverErr(errors.New("nack")))
}
