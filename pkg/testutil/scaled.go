package testutil

import (
	"os"
	"strconv"
	"time"

	"src.rtorc.sh/pkg/env"
)

// Scaled multiplies d by the factor in $RTORC_TEST_TIME_SCALE. Slow machines
// set it to make timeouts in tests longer. A missing factor or one that is
// not a positive number counts as 1.
func Scaled(d time.Duration) time.Duration {
	scale, err := strconv.ParseFloat(os.Getenv(env.RTORC_TEST_TIME_SCALE), 64)
	if err != nil || scale <= 0 {
		return d
	}
	return time.Duration(float64(d) * scale)
}
