package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// OS is a host operating system a Unity editor can be installed on.
type OS int

const (
	Linux OS = iota + 1
	Mac
	Windows
)

var ErrUnsupported = errors.New("unsupported platform")

type UnsupportedError struct {
	Value string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupported.Error(), e.Value)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

func All() []OS {
	return []OS{Linux, Mac, Windows}
}

func (os OS) String() string {
	switch os {
	case Linux:
		return "linux"
	case Mac:
		return "mac"
	case Windows:
		return "win"
	default:
		return fmt.Sprintf("OS(%d)", int(os))
	}
}

func (os OS) Validate() error {
	switch os {
	case Linux, Mac, Windows:
		return nil
	default:
		return &UnsupportedError{Value: os.String()}
	}
}

// Parse accepts the names the command line uses as well as GOOS values.
func Parse(value string) (OS, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "linux":
		return Linux, nil
	case "mac", "macos", "darwin":
		return Mac, nil
	case "win", "windows":
		return Windows, nil
	default:
		return 0, &UnsupportedError{Value: value}
	}
}

var goos = func() string { return runtime.GOOS }

func Current() (OS, error) {
	return Parse(goos())
}
