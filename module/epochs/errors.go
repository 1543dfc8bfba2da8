package epochs

import (
	"errors"
)

var (
	// ErrInvalidCapability is returned when a privileged operation is called
	// without the admin capability of this controller.
	ErrInvalidCapability = errors.New("invalid capability")

	// ErrNotBootstrapped is returned when a controller is constructed over a
	// store that holds no epoch zero metadata.
	ErrNotBootstrapped = errors.New("epoch state not bootstrapped")
)
