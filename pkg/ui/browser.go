package ui

import (
	"errors"
	"os/exec"
	"runtime"
)

// BrowserOpener opens a URL in the user's browser.
type BrowserOpener interface {
	Open(url string) error
}

type commandOpener struct {
	name string
	args []string
}

func (c *commandOpener) Open(url string) error {
	args := append(append([]string(nil), c.args...), url)
	return exec.Command(c.name, args...).Start()
}

type unsupportedOpener struct{}

func (unsupportedOpener) Open(string) error {
	return errors.New("opening a browser is not supported on " + runtime.GOOS)
}

// NewBrowserOpener returns the opener for the current platform.
func NewBrowserOpener() BrowserOpener {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return &commandOpener{name: "xdg-open"}
	case "darwin":
		return &commandOpener{name: "open"}
	case "windows":
		return &commandOpener{name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}
	default:
		return unsupportedOpener{}
	}
}
