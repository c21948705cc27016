// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"digilib-viewer/internal/app"
	"digilib-viewer/internal/display"
	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/measure"
	"digilib-viewer/internal/params"
	"digilib-viewer/internal/regions"
	"digilib-viewer/internal/version"
	"digilib-viewer/ui/canvas"
	"digilib-viewer/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs

	viewer    *canvas.Viewer
	bird      *canvas.Birdseye
	birdPane  *fyne.Container
	tools     *widget.RadioGroup
	statusBar *widget.Label
	coords    *widget.Entry

	showBirdItem *fyne.MenuItem
	logger       *zap.Logger
}

// New creates the main window for session.
func New(fyneApp fyne.App, session *app.Session, p *prefs.Prefs, logger *zap.Logger) *MainWindow {
	win := fyneApp.NewWindow("Digilib Viewer")

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		prefs:   p,
		logger:  logging.OrNop(logger).Named("window"),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restore()

	win.SetOnClosed(mw.savePrefs)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	cfg := mw.session.Config()
	mw.viewer = canvas.NewViewer(mw.session, mw.logger)
	mw.bird = canvas.NewBirdseye(mw.session, cfg.BirdWidth, cfg.BirdHeight, mw.logger)
	mw.birdPane = container.NewVBox(widget.NewLabel("Overview"), mw.bird)
	if !mw.prefs.Bool(prefs.KeyShowBird, cfg.ShowBird) {
		mw.birdPane.Hide()
	}

	mw.statusBar = widget.NewLabel("Ready")
	mw.coords = widget.NewEntry()
	mw.coords.SetPlaceHolder("x,y or x,y,w,h")
	mw.coords.OnSubmitted = mw.onFindCoords

	side := container.NewVBox(
		mw.birdPane,
		widget.NewSeparator(),
		widget.NewLabel("Find coordinates"),
		mw.coords,
		widget.NewSeparator(),
		mw.createMeasurePanel(),
	)

	content := container.NewBorder(
		mw.createToolbar(),                // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		container.NewPadded(side),         // right
		mw.viewer,                         // center
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(
		float32(mw.prefs.FloatWithFallback(prefs.KeyWindowWidth, 1100)),
		float32(mw.prefs.FloatWithFallback(prefs.KeyWindowHeight, 800)),
	))
}

// createToolbar creates the tool selector and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	names := []string{canvas.ToolZoom.String(), canvas.ToolPan.String(), canvas.ToolRegion.String(), canvas.ToolMeasure.String()}
	mw.tools = widget.NewRadioGroup(names, func(sel string) {
		for i, n := range names {
			if n == sel {
				mw.viewer.SetTool(canvas.Tool(i))
				mw.prefs.SetString(prefs.KeyTool, sel)
			}
		}
	})
	mw.tools.Horizontal = true
	mw.tools.Required = true
	mw.tools.SetSelected(canvas.ToolZoom.String())

	return container.NewHBox(
		mw.tools,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), mw.viewer.ZoomOut),
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), mw.viewer.ZoomIn),
		widget.NewButtonWithIcon("", theme.ZoomFitIcon(), mw.session.Zoom.ResetZoom),
		widget.NewSeparator(),
		widget.NewButtonWithIcon("", theme.VisibilityIcon(), mw.onToggleRegions),
		widget.NewButtonWithIcon("", theme.ContentUndoIcon(), mw.onRemoveLastRegion),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), mw.onRemoveAllRegions),
	)
}

// createMeasurePanel creates the calibration and unit controls.
func (mw *MainWindow) createMeasurePanel() fyne.CanvasObject {
	var unitNames []string
	for _, u := range measure.Units {
		unitNames = append(unitNames, u.Name)
	}
	r := mw.session.Meter.Reading()
	from := widget.NewSelect(unitNames, nil)
	to := widget.NewSelect(unitNames, nil)
	from.SetSelected(r.From.Name)
	to.SetSelected(r.To.Name)
	changed := func(string) {
		f, errF := measure.LookupUnit(from.Selected)
		t, errT := measure.LookupUnit(to.Selected)
		if errF != nil || errT != nil {
			return
		}
		mw.showReading(mw.session.Meter.SetUnits(f, t))
	}
	from.OnChanged = changed
	to.OnChanged = changed

	length := widget.NewEntry()
	length.SetPlaceHolder("known length")
	length.OnSubmitted = func(text string) {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			mw.updateStatus("Not a number: " + text)
			return
		}
		r, err := mw.session.Meter.UpdateFactor(v)
		if err != nil {
			mw.updateStatus("Calibration failed: " + err.Error())
			return
		}
		mw.showReading(r)
	}

	return container.NewVBox(
		widget.NewLabel("Measure"),
		container.NewGridWithColumns(2, widget.NewLabel("From"), from, widget.NewLabel("To"), to),
		length,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Import Regions...", mw.onImportRegions),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Regions as HTML...", func() { mw.onExportRegions(regions.FormatHTML) }),
		fyne.NewMenuItem("Export Regions as SVG...", func() { mw.onExportRegions(regions.FormatSVG) }),
		fyne.NewMenuItem("Export Regions as CSV...", func() { mw.onExportRegions(regions.FormatCSV) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy View Parameters", mw.onCopyParams),
		fyne.NewMenuItem("Paste View Parameters", mw.onPasteParams),
	)

	mw.showBirdItem = fyne.NewMenuItem("Show Overview", mw.onToggleBird)
	mw.showBirdItem.Checked = mw.birdPane.Visible()
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.viewer.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.viewer.ZoomOut),
		fyne.NewMenuItem("Full Page", mw.session.Zoom.ResetZoom),
		fyne.NewMenuItemSeparator(),
		mw.showBirdItem,
		fyne.NewMenuItem("Toggle Regions", mw.onToggleRegions),
		fyne.NewMenuItem("Toggle Fullscreen", mw.onToggleFullscreen),
	)

	regionMenu := fyne.NewMenu("Regions",
		fyne.NewMenuItem("Remove Last", mw.onRemoveLastRegion),
		fyne.NewMenuItem("Remove All", mw.onRemoveAllRegions),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, regionMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventImageLoaded, func(interface{}) {
		p := mw.session.Params()
		mw.SetTitle("Digilib Viewer - " + filepath.Base(p.Fn))
		mw.prefs.AddRecent(p.Fn)
		mw.updateStatus("Loaded " + p.Fn)
	})
	mw.session.On(app.EventImageFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			dialog.ShowError(err, mw.Window)
		}
	})
	mw.session.On(app.EventRegionCoords, func(data interface{}) {
		if coords, ok := data.(string); ok {
			mw.Clipboard().SetContent(coords)
			mw.updateStatus("Region " + coords + " (copied)")
		}
	})
	mw.session.On(app.EventRegionClicked, func(data interface{}) {
		if r, ok := data.(*regions.Region); ok {
			label := r.Title
			if label == "" {
				label = fmt.Sprintf("%s region %d", r.Kind, r.Number)
			}
			if r.Href != "" {
				label += " -> " + r.Href
			}
			mw.updateStatus(label)
		}
	})
	mw.session.On(app.EventMeasured, func(data interface{}) {
		if m, ok := data.(app.Measurement); ok {
			mw.showMeasurement(m)
		}
	})
	mw.session.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(display.Mode); ok {
			mw.SetFullScreen(m == display.Fullscreen)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) showMeasurement(m app.Measurement) {
	text := fmt.Sprintf("%.4f %s = %.4f %s (%.1f px",
		m.Reading.Value, m.Reading.From.Name, m.Reading.Converted, m.Reading.To.Name, m.Distance.Pixels)
	if m.Distance.HasMM {
		text += fmt.Sprintf(", %.1f mm", m.Distance.MM)
	}
	mw.updateStatus(text + ")")
}

func (mw *MainWindow) showReading(r measure.Reading) {
	mw.updateStatus(fmt.Sprintf("%.4f %s = %.4f %s", r.Value, r.From.Name, r.Converted, r.To.Name))
}

// restore loads the page and view shown when the viewer was last closed.
func (mw *MainWindow) restore() {
	if name := mw.prefs.String(prefs.KeyTool); name != "" {
		mw.tools.SetSelected(name)
	}
	if q := mw.prefs.String(prefs.KeyLastParams); q != "" {
		if p, err := params.Parse(q); err == nil && p.Fn != "" {
			mw.OpenParams(p)
			return
		}
	}
	if path := mw.prefs.String(prefs.KeyLastImage); path != "" {
		mw.Open(path)
	}
}

// Open loads the page at path.
func (mw *MainWindow) Open(path string) {
	if _, err := os.Stat(path); err != nil {
		mw.logger.Warn("page not found", zap.String("path", path), zap.Error(err))
		return
	}
	mw.session.LoadImage(context.Background(), path)
}

// OpenParams loads the page named in p and restores its view once loaded.
func (mw *MainWindow) OpenParams(p params.Params) {
	if p.Fn == "" {
		mw.applyParams(p)
		return
	}
	var once bool
	mw.session.On(app.EventImageLoaded, func(interface{}) {
		if once {
			return
		}
		once = true
		mw.applyParams(p)
	})
	mw.Open(p.Fn)
}

func (mw *MainWindow) applyParams(p params.Params) {
	fn := mw.session.Params().Fn
	if p.Fn == "" {
		p.Fn = fn
	}
	if err := mw.session.ApplyParams(p); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) savePrefs() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetBool(prefs.KeyShowBird, mw.birdPane.Visible())
	mw.prefs.SetString(prefs.KeyLastParams, mw.session.Params().Encode())
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("saving preferences failed", zap.Error(err))
	}
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// Menu action handlers

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.Open(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onImportRegions() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		added, skipped, err := mw.session.ImportRegions(reader)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus(fmt.Sprintf("Imported %d regions, skipped %d", len(added), len(skipped)))
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".html", ".htm"}))
	fd.Show()
}

func (mw *MainWindow) onExportRegions(f regions.Format) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := regions.Export(writer, mw.session.Regions.Regions(), f); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Regions exported to " + writer.URI().Path())
	}, mw.Window)
	fd.SetFileName("regions." + f.String())
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onCopyParams() {
	q := mw.session.Params().Encode()
	mw.Clipboard().SetContent(q)
	mw.updateStatus("Copied " + q)
}

func (mw *MainWindow) onPasteParams() {
	p, err := params.Parse(mw.Clipboard().Content())
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if p.Fn != "" && p.Fn != mw.session.Params().Fn {
		mw.OpenParams(p)
		return
	}
	mw.applyParams(p)
}

func (mw *MainWindow) onFindCoords(text string) {
	r, err := mw.session.FindCoords(text)
	if err != nil {
		mw.updateStatus("Bad coordinates: " + text)
		return
	}
	mw.updateStatus("Found " + regions.PackCoords(r.Rect, ","))
}

func (mw *MainWindow) onToggleRegions() {
	if mw.session.ToggleRegions() {
		mw.updateStatus("Regions shown")
	} else {
		mw.updateStatus("Regions hidden")
	}
}

func (mw *MainWindow) onRemoveLastRegion() {
	if !mw.session.RemoveLastRegion() {
		mw.updateStatus("No region to remove")
	}
}

func (mw *MainWindow) onRemoveAllRegions() {
	mw.updateStatus(fmt.Sprintf("Removed %d regions", mw.session.RemoveAllRegions()))
}

func (mw *MainWindow) onToggleBird() {
	if mw.birdPane.Visible() {
		mw.birdPane.Hide()
	} else {
		mw.birdPane.Show()
	}
	mw.showBirdItem.Checked = mw.birdPane.Visible()
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) onToggleFullscreen() {
	if mw.session.Mode() == display.Fullscreen {
		mw.session.SetMode(display.Embedded)
	} else {
		mw.session.SetMode(display.Fullscreen)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Digilib Viewer",
		fmt.Sprintf("Digilib Viewer v%s\n\n"+
			"Zoom, annotate and measure scanned pages.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
