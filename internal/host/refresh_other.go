//go:build !unix

package host

import "errors"

const sigRTMin = 34

func killProcess(int, int) error {
	return errors.New("signals are not supported on this platform")
}
