package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gobarscan/pkg/config"
	"github.com/itohio/gobarscan/pkg/sensor"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createDecoderTab(state),
		createDisplayTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// editConfig applies edit to a copy of cfg and commits the copy only when it
// validates, so a rejected edit leaves cfg untouched.
func editConfig(cfg *config.Config, edit func(c *config.Config)) error {
	next := *cfg
	edit(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

// commitConfig validates and persists an edit. Decoder and mock changes take
// effect on the next connect.
func commitConfig(state *appState, edit func(c *config.Config)) bool {
	if err := editConfig(state.cfg, edit); err != nil {
		dialog.ShowError(err, state.window)
		return false
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
	return true
}

// restartChain reconnects a running chain so new settings apply.
func restartChain(state *appState) {
	if state.chain == nil {
		return
	}
	handleConnect(state)
	handleConnect(state)
}

func createSerialTab(state *appState) *container.TabItem {
	ports, err := sensor.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // display name to port name

	if err != nil {
		state.log.Warnw("failed to list ports", "error", err)
	}
	for _, port := range ports {
		portOptions = append(portOptions, port.Description)
		portMap[port.Description] = port.Name
	}

	currentPort := state.cfg.Serial.Port
	currentDisplay := ""
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			break
		}
	}
	if currentDisplay == "" && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			prev := state.cfg.Serial
			ok := commitConfig(state, func(c *config.Config) {
				if portSelect.Selected != "" {
					selected := portMap[portSelect.Selected]
					if selected == "" {
						selected = portSelect.Selected
					}
					c.Serial.Port = selected
				}
				if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
					c.Serial.BaudRate = baud
				}
			})

			if ok && prev != state.cfg.Serial && !state.useMock {
				restartChain(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

func createDecoderTab(state *appState) *container.TabItem {
	d := state.cfg.Decoder

	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.Itoa(d.WindowSize))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(strconv.Itoa(int(d.NoiseThreshold)))

	darkEntry := widget.NewEntry()
	darkEntry.SetText(strconv.Itoa(int(d.DarkThreshold)))

	unitEntry := widget.NewEntry()
	unitEntry.SetText(d.UnitDuration.String())

	staleEntry := widget.NewEntry()
	staleEntry.SetText(strconv.Itoa(d.StaleReadings))

	suggestBtn := widget.NewButton("Use calibration", func() {
		cal := state.scanner.Calibration()
		if cal.DarkThreshold == 0 {
			dialog.ShowInformation("Calibration", "Scan a barcode first: both light and dark levels are needed.", state.window)
			return
		}
		darkEntry.SetText(strconv.Itoa(int(cal.DarkThreshold)))
		noiseEntry.SetText(strconv.Itoa(int(cal.NoiseThreshold)))
	})

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Averaging Window (samples)", Widget: windowEntry},
			{Text: "Noise Threshold (counts)", Widget: noiseEntry},
			{Text: "Dark Threshold (counts)", Widget: darkEntry},
			{Text: "Duration Unit", Widget: unitEntry},
			{Text: "Stale Readings (<0 disables)", Widget: staleEntry},
			{Text: "", Widget: suggestBtn},
		},
		OnSubmit: func() {
			ok := commitConfig(state, func(c *config.Config) {
				d := &c.Decoder
				if v, err := strconv.Atoi(windowEntry.Text); err == nil {
					d.WindowSize = v
				}
				if v, err := strconv.ParseUint(noiseEntry.Text, 10, 16); err == nil {
					d.NoiseThreshold = uint16(v)
				}
				if v, err := strconv.ParseUint(darkEntry.Text, 10, 16); err == nil {
					d.DarkThreshold = uint16(v)
				}
				if v, err := time.ParseDuration(unitEntry.Text); err == nil {
					d.UnitDuration = v
				}
				if v, err := strconv.Atoi(staleEntry.Text); err == nil && v != 0 {
					d.StaleReadings = v
				}
			})
			if ok {
				restartChain(state)
			}
		},
	}

	return container.NewTabItem("Decoder", form)
}

func createDisplayTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Display.WindowSeconds))

	pointsEntry := widget.NewEntry()
	pointsEntry.SetText(strconv.Itoa(state.cfg.Display.MaxPoints))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowEntry},
			{Text: "Max Points", Widget: pointsEntry},
		},
		OnSubmit: func() {
			commitConfig(state, func(c *config.Config) {
				if v, err := strconv.ParseFloat(windowEntry.Text, 64); err == nil && v > 0 {
					c.Display.WindowSeconds = v
				}
				if v, err := strconv.Atoi(pointsEntry.Text); err == nil && v > 0 {
					c.Display.MaxPoints = v
				}
			})
		},
	}

	return container.NewTabItem("Display", form)
}

func createMockTab(state *appState) *container.TabItem {
	m := state.cfg.Mock

	textEntry := widget.NewEntry()
	textEntry.SetText(m.Text)

	narrowEntry := widget.NewEntry()
	narrowEntry.SetText(m.Narrow.String())

	ratioEntry := widget.NewEntry()
	ratioEntry.SetText(fmt.Sprintf("%.2f", m.WideRatio))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.1f", m.NoiseLevel))

	riseEntry := widget.NewEntry()
	riseEntry.SetText(m.Rise.String())

	pauseEntry := widget.NewEntry()
	pauseEntry.SetText(m.Pause.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Strip Text", Widget: textEntry},
			{Text: "Narrow Element", Widget: narrowEntry},
			{Text: "Wide Ratio", Widget: ratioEntry},
			{Text: "Noise (counts)", Widget: noiseEntry},
			{Text: "Sensor Rise", Widget: riseEntry},
			{Text: "Pause", Widget: pauseEntry},
		},
		OnSubmit: func() {
			ok := commitConfig(state, func(c *config.Config) {
				m := &c.Mock
				if textEntry.Text != "" {
					m.Text = textEntry.Text
				}
				if v, err := time.ParseDuration(narrowEntry.Text); err == nil {
					m.Narrow = v
				}
				if v, err := strconv.ParseFloat(ratioEntry.Text, 64); err == nil {
					m.WideRatio = v
				}
				if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil && v >= 0 {
					m.NoiseLevel = v
				}
				if v, err := time.ParseDuration(riseEntry.Text); err == nil && v >= 0 {
					m.Rise = v
				}
				if v, err := time.ParseDuration(pauseEntry.Text); err == nil && v > 0 {
					m.Pause = v
				}
			})

			if ok && state.useMock {
				restartChain(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
