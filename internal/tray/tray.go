// Package tray provides an optional desktop tray entry for operator
// workstations: a status tooltip, a shortcut to the diagnostics endpoint
// and a clean way to stop the daemon. Headless deployments never load it.
package tray

import (
	"log"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// ShutdownFunc is called when "Exit" is clicked.
type ShutdownFunc func()

// Tray manages the system tray icon and menu.
type Tray struct {
	diagURL      string
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	menuDiag     *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a new Tray instance. diagURL is the HTTP diagnostics page
// the "Diagnostics" item opens.
func New(diagURL string, shutdownFn ShutdownFunc) *Tray {
	return &Tray{
		diagURL:      diagURL,
		shutdownFunc: shutdownFn,
	}
}

// Run initializes and runs the system tray (blocks until Quit()).
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("joyd")
	systray.SetTooltip("joystick driver - " + t.diagURL)

	t.menuDiag = systray.AddMenuItem("Diagnostics", "Open the health endpoint")
	t.menuExit = systray.AddMenuItem("Exit", "Stop the driver")

	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuDiag.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	log.Println("System tray exiting")
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.diagURL)
	case "darwin":
		cmd = exec.Command("open", t.diagURL)
	default:
		cmd = exec.Command("xdg-open", t.diagURL)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
