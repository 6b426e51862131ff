package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

//go:embed web/index.html
var webUIHTML string

// WebServer serves the widget page and its JSON API
type WebServer struct {
	config    *Config
	converter *Converter
	prefs     PreferenceStore
	addr      string
	validate  *validator.Validate
}

// NewWebServer creates a new web server instance
func NewWebServer(config *Config, converter *Converter, prefs PreferenceStore, addr string) *WebServer {
	return &WebServer{
		config:    config,
		converter: converter,
		prefs:     prefs,
		addr:      addr,
		validate:  validator.New(),
	}
}

// APIConvertRequest is the widget state posted by the page
type APIConvertRequest struct {
	Amount         int64   `json:"amount" validate:"gte=0"`
	HistoricalYear int     `json:"historical_year" validate:"required"`
	FutureYear     int     `json:"future_year" validate:"required"`
	Rate           float64 `json:"rate" validate:"gt=-100,lte=100"`
}

// APIStepRequest moves the amount one slider step
type APIStepRequest struct {
	APIConvertRequest
	Direction string `json:"direction" validate:"oneof=up down"`
}

// APIThemeRequest sets the theme preference
type APIThemeRequest struct {
	Theme string `json:"theme" validate:"oneof=light dark"`
}

// APIResponse wraps every JSON payload
type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// APIWidgetConfig is what the page needs to build its controls
type APIWidgetConfig struct {
	ReferenceYear int          `json:"reference_year"`
	Widget        WidgetConfig `json:"widget"`
	Rates         []RateEntry  `json:"rates"`
	Theme         Theme        `json:"theme"`
}

// ExportResponse reports where an exported file was written
type ExportResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message"`
}

// Router builds the HTTP handler with all routes
func (ws *WebServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", ws.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", ws.handleGetConfig)
		r.Get("/rates", ws.handleGetRates)
		r.Post("/convert", ws.handleConvert)
		r.Post("/convert/step", ws.handleStep)
		r.Get("/timeline", ws.handleTimeline)
		r.Get("/rate-grid", ws.handleRateGrid)
		r.Get("/preferences/theme", ws.handleGetTheme)
		r.Put("/preferences/theme", ws.handleSetTheme)
		r.Post("/export-csv", ws.handleExportCSV)
		r.Post("/export-pdf", ws.handleExportPDF)
		r.Post("/download-pdf", ws.handleDownloadPDF)
	})
	return r
}

// requestLogger logs one line per request with the chi request id
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.InfoContext(r.Context(), "http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// listen opens the listener and works out the browser URL (":0" picks a free port)
func (ws *WebServer) listen() (net.Listener, string, error) {
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return nil, "", err
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)

	// If listening on all interfaces, use localhost for the URL
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}
	return listener, url, nil
}

// Start serves until ctx is cancelled, opening the page in the system browser
func (ws *WebServer) Start(ctx context.Context) error {
	listener, url, err := ws.listen()
	if err != nil {
		return err
	}

	slog.Info("starting web server", "addr", listener.Addr().String())
	slog.Info("opening browser", "url", url)
	go openBrowser(url)

	server := &http.Server{Handler: ws.Router(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartForEmbedded starts the server and returns the URL and a cleanup function.
// Unlike Start(), this does NOT open the browser and does NOT block.
func (ws *WebServer) StartForEmbedded() (url string, cleanup func(), err error) {
	listener, url, err := ws.listen()
	if err != nil {
		return "", nil, err
	}

	slog.Info("starting embedded web server", "addr", listener.Addr().String())

	server := &http.Server{Handler: ws.Router(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
	return url, cleanup, nil
}

// handleIndex serves the widget page
func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, webUIHTML)
}

// handleGetConfig returns slider bounds, defaults, the rate table and the saved theme
func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	theme, err := ws.prefs.Theme(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "could not read theme, using default", "error", err)
		theme = ThemeLight
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: APIWidgetConfig{
		ReferenceYear: ws.converter.ReferenceYear(),
		Widget:        ws.config.Widget,
		Rates:         ws.converter.Rates().Entries(),
		Theme:         theme,
	}})
}

// handleGetRates returns the rate table sorted by year
func (ws *WebServer) handleGetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: ws.converter.Rates().Entries()})
}

// handleConvert illustrates a widget state
func (ws *WebServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate[APIConvertRequest](ws, w, r)
	if !ok {
		return
	}
	ws.writeIllustration(w, r, ws.stateFor(*req))
}

// handleStep applies an arrow-key step to the amount, then illustrates
func (ws *WebServer) handleStep(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate[APIStepRequest](ws, w, r)
	if !ok {
		return
	}
	dir := StepUp
	if req.Direction == "down" {
		dir = StepDown
	}
	ws.writeIllustration(w, r, ws.stateFor(req.APIConvertRequest).StepAmount(dir))
}

func (ws *WebServer) stateFor(req APIConvertRequest) WidgetState {
	return DefaultWidgetState(ws.config).
		WithAmount(req.Amount).
		WithHistoricalYear(req.HistoricalYear).
		WithFutureYear(req.FutureYear).
		WithRate(req.Rate)
}

func (ws *WebServer) writeIllustration(w http.ResponseWriter, r *http.Request, state WidgetState) {
	ill, err := state.Illustrate(ws.converter)
	if err != nil {
		slog.WarnContext(r.Context(), "conversion rejected", "error", err)
		sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: ill})
}

// handleTimeline returns one value per year, ?amount=&rate=&from=&to=
func (ws *WebServer) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err1 := queryInt64(q.Get("amount"), ws.config.Widget.DefaultAmount)
	rate, err2 := queryFloat(q.Get("rate"), ws.config.Widget.DefaultRate)
	from, err3 := queryInt(q.Get("from"), ws.config.Widget.HistoricalYearMin)
	to, err4 := queryInt(q.Get("to"), ws.config.Widget.FutureYearMax)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	lo, hi := ws.config.Widget.HistoricalYearMin, ws.config.Widget.FutureYearMax
	if from < lo || from > hi || to < lo || to > hi {
		sendJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid query: from and to must be within %d-%d", lo, hi))
		return
	}

	points, err := Timeline(ws.converter, amount, rate, from, to)
	if err != nil {
		sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: points})
}

// handleRateGrid returns future values for every configured rate, ?amount=&step=
func (ws *WebServer) handleRateGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err1 := queryInt64(q.Get("amount"), ws.config.Widget.DefaultAmount)
	step, err2 := queryInt(q.Get("step"), 5)
	if err := errors.Join(err1, err2); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	grid, err := ws.rateGrid(amount, step)
	if err != nil {
		sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: grid})
}

func (ws *WebServer) rateGrid(amount int64, step int) (RateGrid, error) {
	years := gridYears(ws.converter.ReferenceYear(), ws.config.Widget.FutureYearMax, step)
	return BuildRateGrid(ws.converter, amount, ws.config.Widget.RateChoices, years)
}

// handleGetTheme returns the saved theme
func (ws *WebServer) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := ws.prefs.Theme(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "read theme", "error", err)
		sendJSONError(w, http.StatusInternalServerError, "Failed to read theme")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]Theme{"theme": theme}})
}

// handleSetTheme saves the theme
func (ws *WebServer) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate[APIThemeRequest](ws, w, r)
	if !ok {
		return
	}
	theme := Theme(req.Theme)
	if err := ws.prefs.SetTheme(r.Context(), theme); err != nil {
		slog.ErrorContext(r.Context(), "save theme", "error", err)
		sendJSONError(w, http.StatusInternalServerError, "Failed to save theme")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]Theme{"theme": theme}})
}

// handleExportCSV writes the timeline for the posted state to the export directory
func (ws *WebServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate[APIConvertRequest](ws, w, r)
	if !ok {
		return
	}
	state := ws.stateFor(*req)

	points, err := Timeline(ws.converter, state.Amount, state.RatePercent, ws.config.Widget.HistoricalYearMin, ws.config.Widget.FutureYearMax)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ExportResponse{Success: false, Message: err.Error()})
		return
	}
	data, err := TimelineCSV(points)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Success: false, Message: "Failed to build CSV: " + err.Error()})
		return
	}
	ws.writeExport(w, r, "timeline", "csv", data)
}

// handleExportPDF writes a PDF illustration to the export directory
func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate[APIConvertRequest](ws, w, r)
	if !ok {
		return
	}
	data, err := ws.illustrationPDF(ws.stateFor(*req))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ExportResponse{Success: false, Message: "Failed to generate PDF: " + err.Error()})
		return
	}
	ws.writeExport(w, r, "illustration", "pdf", data)
}

// handleDownloadPDF returns the PDF directly for browser download
func (ws *WebServer) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	req, ok := bindAndValidate[APIConvertRequest](ws, w, r)
	if !ok {
		return
	}
	state := ws.stateFor(*req)
	data, err := ws.illustrationPDF(state)
	if err != nil {
		http.Error(w, "Failed to generate PDF: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	filename := fmt.Sprintf("value-%d-%d-%d.pdf", state.HistoricalYear, ws.converter.ReferenceYear(), state.FutureYear)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (ws *WebServer) illustrationPDF(state WidgetState) ([]byte, error) {
	ill, err := state.Illustrate(ws.converter)
	if err != nil {
		return nil, err
	}
	grid, err := ws.rateGrid(state.Amount, 5)
	if err != nil {
		return nil, err
	}
	return GenerateIllustrationPDF(ill, ws.converter.Rates(), grid)
}

// writeExport saves data as <export dir>/valueconv-<kind>-<date>-<id>.<ext>
func (ws *WebServer) writeExport(w http.ResponseWriter, r *http.Request, kind, ext string, data []byte) {
	exportDir := ws.config.Server.ExportDir
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Success: false, Message: "Failed to create exports directory: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("valueconv-%s-%s-%s.%s", kind, time.Now().Format("2006-01-02"), uuid.NewString()[:8], ext)
	filePath := filepath.Join(exportDir, filename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Success: false, Message: "Failed to write file: " + err.Error()})
		return
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}
	slog.InfoContext(r.Context(), "export written", "kind", kind, "path", absPath, "bytes", len(data))
	writeJSON(w, http.StatusOK, ExportResponse{
		Success:  true,
		FilePath: absPath,
		Message:  fmt.Sprintf("%s saved to %s", strings.ToUpper(ext), absPath),
	})
}

// bindAndValidate decodes the JSON body into T and validates it.
// On failure it writes a 400 response and returns false.
func bindAndValidate[T any](ws *WebServer, w http.ResponseWriter, r *http.Request) (*T, bool) {
	var input T
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if err := ws.validate.Struct(input); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return nil, false
	}
	return &input, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json response", "error", err)
	}
}

// sendJSONError sends a JSON error response
func sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{Success: false, Error: message})
}

func queryInt(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

func queryInt64(s string, fallback int64) (int64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func queryFloat(s string, fallback float64) (float64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(s, 64)
}

// openBrowser opens the URL in the system default browser
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("could not open browser", "url", url, "error", err)
	}
}
