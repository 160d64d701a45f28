package io

import (
	"errors"

	"github.com/ezrec/acc8/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelEmpty   = errors.New(f("channel empty"))
	ErrChannelFull    = errors.New(f("channel full"))
	ErrChannelValue   = errors.New(f("channel value not a byte"))
	ErrChannelMissing = errors.New(f("channel not connected"))
)
