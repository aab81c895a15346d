package vpn

import (
	"context"
	"runtime"
	"strings"

	"github.com/yllada/vpn-client/hostnet"
)

// Opener shows a URL to the user.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// BrowserOpener opens URLs with the desktop's default handler.
type BrowserOpener struct {
	exec hostnet.Executor
	goos string
}

// NewBrowserOpener creates an opener for the running OS.
func NewBrowserOpener(exec hostnet.Executor) *BrowserOpener {
	return &BrowserOpener{exec: exec, goos: runtime.GOOS}
}

func (o *BrowserOpener) Open(ctx context.Context, url string) error {
	switch o.goos {
	case "windows":
		script := "Start-Process '" + strings.ReplaceAll(url, "'", "''") + "'"
		return o.exec.Run(ctx, "powershell", "-NoProfile", "-Command", script)
	case "darwin":
		return o.exec.Run(ctx, "open", url)
	default:
		return o.exec.Run(ctx, "xdg-open", url)
	}
}
