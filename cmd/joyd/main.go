package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/muskanmahajan37/joystick-drivers/internal/backend"
	"github.com/muskanmahajan37/joystick-drivers/internal/config"
	"github.com/muskanmahajan37/joystick-drivers/internal/diag"
	"github.com/muskanmahajan37/joystick-drivers/internal/driver"
	"github.com/muskanmahajan37/joystick-drivers/internal/hub"
	"github.com/muskanmahajan37/joystick-drivers/internal/mapping"
	"github.com/muskanmahajan37/joystick-drivers/internal/server"
	"github.com/muskanmahajan37/joystick-drivers/internal/tray"
)

// Cross-platform signal handling: os.Interrupt covers Ctrl+C on Windows
// and SIGINT on Unix.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	reporter := diag.NewReporter()

	open, lockThread, err := buildOpenFunc(cfg)
	if err != nil {
		log.Fatalf("backend setup failed: %v", err)
	}

	drv, err := driver.New(driver.Config{
		Deadzone:   cfg.Deadzone,
		Coalesce:   cfg.CoalesceInterval(),
		Autorepeat: cfg.AutorepeatInterval(),
		Sticky:     cfg.StickyButtons,
		AxisScale:  cfg.AxisScaleMap(),
		AxisInvert: cfg.AxisInvertMap(),
		LockThread: lockThread,
	}, open, reporter)
	if err != nil {
		log.Fatalf("driver setup failed: %v", err)
	}

	h := hub.NewHub()
	go h.Run()

	broadcaster := hub.NewBroadcaster(h, drv.States(), reporter, cfg.DiagnosticsInterval())
	go broadcaster.Run()

	srv := server.New(h, broadcaster, reporter, cfg.ListenAddr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	driverDone := make(chan struct{})
	go func() {
		drv.Run(ctx)
		close(driverDone)
	}()

	log.Printf("joyd started: backend=%s device=%s listen=%s", cfg.Backend, cfg.Device, cfg.ListenAddr)

	shutdownRequested := make(chan struct{})
	switch {
	case cfg.Tray && runtime.GOOS == "darwin":
		// systray must run on the main goroutine on darwin, and main is
		// busy coordinating shutdown here.
		log.Println("Tray is not available on darwin; press Ctrl+C to exit")
	case cfg.Tray:
		go func() {
			t := tray.New(diagURL(cfg.ListenAddr), func() {
				close(shutdownRequested)
			})
			t.Run()
		}()
	default:
		log.Println("Press Ctrl+C to exit")
	}

	select {
	case <-sigCh:
		log.Println("Shutting down...")
		cancel()
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
		cancel()
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
		cancel()
	}

	<-driverDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("joyd stopped")
}

// buildOpenFunc resolves the configured backend to an open function the
// reconnect supervisor can retry. Fatal configuration problems (an
// unreadable mapping database, a bad device index) surface here, at
// startup.
func buildOpenFunc(cfg *config.Config) (driver.OpenFunc, bool, error) {
	switch cfg.Backend {
	case config.BackendSDL:
		table, err := mapping.Load(cfg.MappingDB)
		if err != nil {
			return nil, false, err
		}
		log.Printf("Loaded %d controller mappings from %s", table.Len(), cfg.MappingDB)
		index, err := cfg.DeviceIndex()
		if err != nil {
			return nil, false, err
		}
		return func() (backend.Backend, error) {
			b, err := backend.OpenControllerPoll(index, table)
			if err != nil {
				return nil, err
			}
			return b, nil
		}, true, nil

	default: // config.BackendKernel, validated upstream
		return func() (backend.Backend, error) {
			b, err := backend.OpenKernelJoystick(cfg.Device)
			if err != nil {
				return nil, err
			}
			return b, nil
		}, false, nil
	}
}

func diagURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/healthz"
}
