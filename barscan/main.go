package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/itohio/gobarscan/pkg/barcode"
	"github.com/itohio/gobarscan/pkg/config"
	"github.com/itohio/gobarscan/pkg/log"
	"github.com/itohio/gobarscan/pkg/scanner"
	"github.com/itohio/gobarscan/pkg/scope"
	"github.com/itohio/gobarscan/pkg/status"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use the simulated strip instead of the serial port")
		mockText     = flag.String("text", "", "Text printed on the simulated strip (overrides config)")
		headlessFlag = flag.Bool("headless", false, "Run without a window: decode, log and serve the status API")
		debugFlag    = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	envErr := config.LoadEnv(".env")
	cfg.ApplyEnv()

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *mockText != "" {
		cfg.Mock.Text = *mockText
	}
	if *debugFlag {
		cfg.Log.Debug = true
	}

	if err := log.Init(cfg.Log.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()
	if envErr != nil {
		logger.Warnw("ignoring environment file", "error", envErr)
	}

	sc := scanner.New(cfg, logger.Named("scanner"))
	sc.OnDecode(func(d barcode.Decode) {
		logger.Infow("barcode", "payload", d.Text, "frame", d.Frame, "id", d.ID)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Status.Enabled {
		srv := status.New(cfg.Status.Listen, sc, logger.Named("status"))
		srv.Start(ctx)
		defer srv.Wait()
	}

	if *headlessFlag {
		runHeadless(ctx, cfg, *mockFlag, sc, logger)
		stop()
		return
	}

	runWindow(ctx, stop, cfg, *configFlag, *mockFlag, sc, logger)
}

// runHeadless decodes until ctx is done.
func runHeadless(ctx context.Context, cfg *config.Config, useMock bool, sc *scanner.Scanner, logger *zap.SugaredLogger) {
	ch, err := startChain(cfg, useMock, sc, logger)
	if err != nil {
		logger.Errorw("failed to start", "error", err)
		return
	}
	<-ctx.Done()
	ch.Close()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	log        *zap.SugaredLogger

	scanner     *scanner.Scanner
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	useMock     bool
	chain       *chain // nil if not connected

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

func runWindow(ctx context.Context, stop context.CancelFunc, cfg *config.Config, configPath string, useMock bool, sc *scanner.Scanner, logger *zap.SugaredLogger) {
	application := app.NewWithID("com.itohio.gobarscan")

	window := application.NewWindow("Barcode Scanner")
	window.Resize(fyne.NewSize(1200, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: configPath,
		log:        logger,
		scanner:    sc,
		window:     window,
		useMock:    useMock,
	}

	state.scopeWidget = scope.New(cfg)
	sc.OnUpdate(func(u scanner.Update) {
		updateScope(state, u)
	})

	window.SetContent(container.NewBorder(
		createToolbar(state),
		nil,
		nil,
		nil,
		state.scopeWidget,
	))
	window.SetOnClosed(func() {
		state.chain.Close()
		stop()
	})

	go func() {
		<-ctx.Done()
		fyne.Do(application.Quit)
	}()

	window.ShowAndRun()
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	source := state.cfg.Serial.Port
	if state.useMock {
		source = "mock: " + state.cfg.Mock.Text
	}

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		widget.NewLabel(source),
		nil,
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		state.chain.Close()
		state.chain = nil
		state.connectBtn.SetIcon(theme.LoginIcon())
		return
	}

	ch, err := startChain(state.cfg, state.useMock, state.scanner, state.log)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.chain = ch
	state.connectBtn.SetIcon(theme.LogoutIcon())
}
