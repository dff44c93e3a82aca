//go:build tinygo || !cgo

package desktop

import "errors"

func Run(Options) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
