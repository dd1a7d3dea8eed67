package main

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"net/http"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"go.uber.org/zap"

	"github.com/stuartleeks/home-dash/weather-api/appinsightsutils"
	"github.com/stuartleeks/home-dash/weather-api/dashboard"
	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/editor"
	"github.com/stuartleeks/home-dash/weather-api/suggest"
	"github.com/stuartleeks/home-dash/weather-api/weather"
)

// A card is re-rendered once it is older than this, even if the client still has it.
const cardMaxAge = 30 * time.Minute

type cachedCard struct {
	City      string
	Width     int
	Record    *data.WeatherRecord
	CreatedAt time.Time
}

type ApiRouter struct {
	tracker    appinsightsutils.Tracker
	logger     *zap.Logger
	clock      clock.Clock
	executor   *weather.Executor
	summarizer *weather.Summarizer
	images     *weather.Images
	presets    *data.Presets
	dashboards *dashboard.Registry
	sessions   *editor.Store
	suggester  *suggest.Suggester
	cardCache  *data.Cache[string, cachedCard]
}

type ApiServices struct {
	Executor   *weather.Executor
	Summarizer *weather.Summarizer
	Images     *weather.Images
	Presets    *data.Presets
	Dashboards *dashboard.Registry
	Sessions   *editor.Store
	Suggester  *suggest.Suggester
}

func NewApiRouter(services ApiServices, tracker appinsightsutils.Tracker, logger *zap.Logger, clk clock.Clock) *ApiRouter {
	if services.Executor == nil {
		panic("executor is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.NewClock()
	}
	return &ApiRouter{
		tracker:    tracker,
		logger:     logger,
		clock:      clk,
		executor:   services.Executor,
		summarizer: services.Summarizer,
		images:     services.Images,
		presets:    services.Presets,
		dashboards: services.Dashboards,
		sessions:   services.Sessions,
		suggester:  services.Suggester,
		cardCache:  data.NewCacheWithClock[string, cachedCard](10*time.Minute, clk),
	}
}

// PruneCaches drops expired cards, dashboards and editor sessions.
func (api *ApiRouter) PruneCaches() int {
	pruned := api.cardCache.Prune()
	if api.dashboards != nil {
		pruned += api.dashboards.Prune()
	}
	if api.sessions != nil {
		pruned += api.sessions.Prune()
	}
	return pruned
}

func registerHandlers(mux *appinsightsutils.ServeMuxWithTrace, api *ApiRouter) {
	mux.HandleFunc("GET /", api.Hello)
	mux.HandleFunc("GET /healthz", api.Health)
	mux.HandleFunc("GET /schema", api.SchemaGet)
	mux.HandleFunc("GET /weather/{city}", api.WeatherGet)
	mux.HandleFunc("GET /weather/{city}/summary", api.WeatherSummaryGet)
	mux.HandleFunc("GET /weather/{city}/image", api.WeatherImageGet)
	mux.HandleFuncWithContext("GET /weather/{city}/card", api.WeatherCardGet)
	mux.HandleFunc("GET /cities", api.CitiesGet)
	mux.HandleFunc("PUT /cities", api.CitiesSet)
	mux.HandleFunc("POST /dashboards", api.DashboardCreate)
	mux.HandleFunc("GET /dashboards/{id}", api.DashboardGet)
	mux.HandleFuncWithContext("POST /dashboards/{id}/search", api.DashboardSearch)
	mux.HandleFunc("GET /languages", api.LanguagesGet)
	mux.HandleFunc("POST /sessions", api.SessionCreate)
	mux.HandleFunc("GET /sessions/{id}", api.SessionGet)
	mux.HandleFunc("PUT /sessions/{id}/code", api.SessionCodeSet)
	mux.HandleFunc("POST /sessions/{id}/suggestions", api.SessionSuggestions)
	mux.HandleFunc("GET /sessions/{id}/users", api.SessionUsersGet)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (api *ApiRouter) Hello(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}
	fmt.Fprintf(w, "Hello, world 👋")
}

func (api *ApiRouter) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *ApiRouter) SchemaGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Variant any `json:"variant"`
		Schema  any `json:"schema"`
	}{
		Variant: api.executor.Variant(),
		Schema:  api.executor.Contract().GenAI(),
	})
}

func cityFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	city := strings.TrimSpace(r.PathValue("city"))
	if city == "" {
		http.Error(w, "city must not be empty", http.StatusBadRequest)
		return "", false
	}
	return city, true
}

// WeatherGet always answers 200 with a record; clients check current.condition for "Error".
func (api *ApiRouter) WeatherGet(w http.ResponseWriter, r *http.Request) {
	city, ok := cityFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, api.executor.Query(r.Context(), city))
}

func (api *ApiRouter) WeatherSummaryGet(w http.ResponseWriter, r *http.Request) {
	city, ok := cityFromPath(w, r)
	if !ok {
		return
	}
	record := api.executor.Query(r.Context(), city)
	writeJSON(w, http.StatusOK, struct {
		City    string `json:"city"`
		Summary string `json:"summary"`
	}{
		City:    city,
		Summary: api.summarizer.Summarize(r.Context(), record),
	})
}

func (api *ApiRouter) WeatherImageGet(w http.ResponseWriter, r *http.Request) {
	city, ok := cityFromPath(w, r)
	if !ok {
		return
	}
	condition := strings.TrimSpace(r.URL.Query().Get("condition"))
	writeJSON(w, http.StatusOK, struct {
		ImageURL string `json:"imageUrl"`
	}{
		ImageURL: api.images.BackgroundURL(r.Context(), city, condition),
	})
}

func (api *ApiRouter) trackCacheEvent(cacheHit bool, reason string) {
	if api.tracker == nil {
		return
	}
	e := appinsights.NewEventTelemetry("cache-hit")
	e.Properties["cache-hit"] = fmt.Sprintf("%t", cacheHit)
	e.Properties["reason"] = reason
	api.tracker.Track(e)
}

func (api *ApiRouter) WeatherCardGet(w http.ResponseWriter, r *http.Request, telemetry *appinsights.RequestTelemetry) {
	city, ok := cityFromPath(w, r)
	if !ok {
		return
	}
	width := cardWidth
	if s := r.URL.Query().Get("width"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 100 || v > 2000 {
			http.Error(w, "width must be between 100 and 2000", http.StatusBadRequest)
			return
		}
		width = v
	}

	ifNoneMatch := r.Header.Get("If-None-Match")
	if ifNoneMatch != "" {
		telemetry.Properties["If-None-Match"] = ifNoneMatch
		cached := api.cardCache.Get(ifNoneMatch)
		switch {
		case cached == nil:
			api.trackCacheEvent(false, "no cached data")
		case !strings.EqualFold(cached.City, city) || cached.Width != width:
			api.trackCacheEvent(false, "different card")
		case api.clock.Since(cached.CreatedAt) > cardMaxAge:
			api.trackCacheEvent(false, "card is more than 30 minutes old")
		case cached.Record.IsError():
			api.trackCacheEvent(false, "cached card is an error card")
		default:
			api.trackCacheEvent(true, "no significant change")
			w.WriteHeader(http.StatusNotModified)
			return
		}
	} else {
		api.trackCacheEvent(false, "If-None-Match header not set")
	}

	record := api.executor.Query(r.Context(), city)
	summary := ""
	if !record.IsError() {
		summary = api.summarizer.Summarize(r.Context(), record)
	}

	img, err := drawWeatherCard(record, summary, width)
	if err != nil {
		api.logger.Error("drawing weather card failed", zap.String("city", city), zap.Error(err))
		http.Error(w, "failed to draw weather card", http.StatusInternalServerError)
		return
	}

	// Can't use multiwriter here because we need the hash to set
	// the etag header before writing the image to the response
	buf := new(bytes.Buffer)
	if err = jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	bufBytes := buf.Bytes()

	hash := sha1.New()
	hash.Write(bufBytes)
	hashValue := fmt.Sprintf("%x", hash.Sum(nil))

	api.cardCache.Set(hashValue, &cachedCard{
		City:      city,
		Width:     width,
		Record:    record,
		CreatedAt: api.clock.Now(),
	})
	telemetry.Properties["Etag"] = hashValue
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Etag", hashValue)
	_, _ = w.Write(bufBytes)
}

type citiesBody struct {
	Cities []string `json:"cities"`
}

func (api *ApiRouter) CitiesGet(w http.ResponseWriter, r *http.Request) {
	cities, err := api.presets.Get()
	if err != nil {
		api.logger.Error("reading preset cities failed", zap.Error(err))
		http.Error(w, "failed to read preset cities", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, citiesBody{Cities: cities})
}

func (api *ApiRouter) CitiesSet(w http.ResponseWriter, r *http.Request) {
	var body citiesBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cities, err := api.presets.Set(body.Cities)
	if err != nil {
		api.logger.Error("saving preset cities failed", zap.Error(err))
		http.Error(w, "failed to save preset cities", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, citiesBody{Cities: cities})
}

type dashboardResponse struct {
	ID   string          `json:"id"`
	View *dashboard.View `json:"view,omitempty"`
}

func boardResponse(board *dashboard.Board) dashboardResponse {
	resp := dashboardResponse{ID: board.ID}
	if view, ok := board.View(); ok {
		resp.View = &view
	}
	return resp
}

func (api *ApiRouter) DashboardCreate(w http.ResponseWriter, r *http.Request) {
	board, err := api.dashboards.Create(r.Context())
	if err != nil {
		api.logger.Error("creating dashboard failed", zap.Error(err))
		http.Error(w, "failed to create dashboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, boardResponse(board))
}

func (api *ApiRouter) DashboardGet(w http.ResponseWriter, r *http.Request) {
	board, err := api.dashboards.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, boardResponse(board))
}

func (api *ApiRouter) DashboardSearch(w http.ResponseWriter, r *http.Request, telemetry *appinsights.RequestTelemetry) {
	board, err := api.dashboards.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	telemetry.Properties["city"] = body.City

	view, err := board.Search(r.Context(), body.City)
	switch {
	case errors.Is(err, dashboard.ErrEmptyCity):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, dashboard.ErrSuperseded):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{ID: board.ID, View: &view})
}

func (api *ApiRouter) LanguagesGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, editor.Languages)
}

func (api *ApiRouter) SessionCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	session, err := api.sessions.Create(body.Language)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (api *ApiRouter) SessionGet(w http.ResponseWriter, r *http.Request) {
	session, err := api.sessions.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (api *ApiRouter) SessionCodeSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	session, err := api.sessions.UpdateCode(r.PathValue("id"), body.Code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (api *ApiRouter) SessionSuggestions(w http.ResponseWriter, r *http.Request) {
	session, err := api.sessions.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	body := struct {
		CursorPosition *int `json:"cursorPosition"`
	}{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	cursor := len(session.Code)
	if body.CursorPosition != nil {
		cursor = *body.CursorPosition
	}

	suggestions, err := api.suggester.Suggest(r.Context(), suggest.Input{
		Language:       session.Language,
		Code:           session.Code,
		CursorPosition: cursor,
	})
	if err != nil {
		api.logger.Warn("code suggestions failed",
			zap.String("session", session.ID),
			zap.Error(err))
		http.Error(w, "suggestions are unavailable right now", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Suggestions []string `json:"suggestions"`
	}{Suggestions: suggestions})
}

func (api *ApiRouter) SessionUsersGet(w http.ResponseWriter, r *http.Request) {
	if _, err := api.sessions.Get(r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, editor.Users)
}
