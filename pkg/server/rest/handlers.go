package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"
	"github.com/annwhocodes/ResQMap/pkg/hazard"
	"github.com/annwhocodes/ResQMap/pkg/server"
	"github.com/annwhocodes/ResQMap/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type RoutingService interface {
	Route(ctx context.Context, req service.RouteRequest) (service.RouteResult, error)
	ToggleOfflineMode(ctx context.Context, enable bool) (service.Status, error)
	Status() service.Status
}

type Geocoder interface {
	Geocode(ctx context.Context, location string) (float64, float64, error)
}

type HazardService interface {
	Report(ctx context.Context, h hazard.Hazard) (hazard.Hazard, error)
	List(ctx context.Context) ([]hazard.Hazard, error)
}

type RoutingHandler struct {
	svc      RoutingService
	geocoder Geocoder
	hazards  HazardService
	m        *Metrics
}

func RoutingRouter(r *chi.Mux, svc RoutingService, geocoder Geocoder, hazards HazardService, m *Metrics) {
	handler := &RoutingHandler{svc: svc, geocoder: geocoder, hazards: hazards, m: m}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/route", handler.Route)
			r.Get("/geocode", handler.Geocode)
			r.Post("/offline/toggle", handler.ToggleOffline)
			r.Get("/health", handler.Health)
			r.Get("/hazards", handler.ListHazards)
			r.Post("/hazards", handler.ReportHazard)
		})
	})
}

type Coord struct {
	Lat float64 `json:"lat" validate:"lte=90,gte=-90"`
	Lng float64 `json:"lng" validate:"lte=180,gte=-180"`
}

type RouteRequest struct {
	Origin          *Coord `json:"origin,omitempty"`
	Destination     *Coord `json:"destination,omitempty"`
	OriginText      string `json:"origin_text,omitempty"`
	DestinationText string `json:"destination_text,omitempty"`

	Mode       string `json:"mode,omitempty" validate:"omitempty,oneof=astar ml"`
	TravelMode string `json:"travel_mode,omitempty" validate:"omitempty,oneof=driving cycling walking"`

	AvoidTolls    bool `json:"avoid_tolls,omitempty"`
	AvoidHighways bool `json:"avoid_highways,omitempty"`
	AvoidFloods   bool `json:"avoid_floods,omitempty"`
	AvoidDebris   bool `json:"avoid_debris,omitempty"`
}

func (s *RouteRequest) Bind(r *http.Request) error {
	if s.Origin == nil && s.OriginText == "" {
		return errors.New("origin is required")
	}
	if s.Destination == nil && s.DestinationText == "" {
		return errors.New("destination is required")
	}
	return nil
}

type RouteResponse struct {
	Waypoints     []datastructure.Waypoint     `json:"waypoints"`
	TotalDistance float64                      `json:"total_distance"`
	TotalDuration float64                      `json:"total_duration"`
	Polyline      string                       `json:"polyline"`
	Algorithm     string                       `json:"algorithm"`
	Fallback      bool                         `json:"fallback"`
	Scores        *datastructure.ScoringResult `json:"scores,omitempty"`
}

func RenderRouteResponse(res service.RouteResult) *RouteResponse {
	return &RouteResponse{
		Waypoints:     res.Waypoints,
		TotalDistance: res.TotalDistance,
		TotalDuration: res.TotalDuration,
		Polyline:      res.Polyline,
		Algorithm:     res.Algorithm,
		Fallback:      res.Fallback,
		Scores:        res.Scores,
	}
}

func (h *RoutingHandler) Route(w http.ResponseWriter, r *http.Request) {
	data := &RouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	req := service.RouteRequest{
		OriginText:      data.OriginText,
		DestinationText: data.DestinationText,
		Mode:            data.Mode,
		TravelMode:      data.TravelMode,
		Avoid: datastructure.AvoidancePreferences{
			Tolls:    data.AvoidTolls,
			Highways: data.AvoidHighways,
			Floods:   data.AvoidFloods,
			Debris:   data.AvoidDebris,
		},
	}
	if data.Origin != nil {
		c := datastructure.NewCoordinate(data.Origin.Lat, data.Origin.Lng)
		req.Origin = &c
	}
	if data.Destination != nil {
		c := datastructure.NewCoordinate(data.Destination.Lat, data.Destination.Lng)
		req.Destination = &c
	}

	res, err := h.svc.Route(r.Context(), req)
	if err != nil {
		render.Render(w, r, ErrServiceError(err))
		return
	}
	h.m.ObserveRoute(res.Algorithm, res.Fallback)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderRouteResponse(res))
}

type GeocodeResponse struct {
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func (h *RoutingHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("location query parameter is required")))
		return
	}

	lat, lng, err := h.geocoder.Geocode(r.Context(), location)
	if err != nil {
		render.Render(w, r, ErrServiceError(server.WrapErrorf(err, server.ErrNotFound,
			"location %q not found", location)))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &GeocodeResponse{Location: location, Lat: lat, Lng: lng})
}

type ToggleOfflineRequest struct {
	Enable bool `json:"enable"`
}

func (s *ToggleOfflineRequest) Bind(r *http.Request) error {
	return nil
}

type StatusResponse struct {
	Status       string `json:"status"`
	OfflineMode  bool   `json:"offline_mode"`
	ModelLoaded  bool   `json:"model_loaded"`
	CachedRoutes int    `json:"cached_routes"`
}

func RenderStatusResponse(st service.Status) *StatusResponse {
	return &StatusResponse{
		Status:       "ok",
		OfflineMode:  st.Mode == service.ModeOffline,
		ModelLoaded:  st.ModelLoaded,
		CachedRoutes: st.CachedRoutes,
	}
}

func (h *RoutingHandler) ToggleOffline(w http.ResponseWriter, r *http.Request) {
	data := &ToggleOfflineRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	st, err := h.svc.ToggleOfflineMode(r.Context(), data.Enable)
	if err != nil {
		render.Render(w, r, ErrServiceError(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderStatusResponse(st))
}

func (h *RoutingHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderStatusResponse(h.svc.Status()))
}

type HazardRequest struct {
	Type        string  `json:"type" validate:"required"`
	Severity    string  `json:"severity" validate:"omitempty,oneof=low medium high"`
	Lat         float64 `json:"lat" validate:"lte=90,gte=-90"`
	Lng         float64 `json:"lng" validate:"lte=180,gte=-180"`
	Description string  `json:"description"`
}

func (s *HazardRequest) Bind(r *http.Request) error {
	if s.Type == "" {
		return errors.New("hazard type is required")
	}
	return nil
}

func (h *RoutingHandler) ReportHazard(w http.ResponseWriter, r *http.Request) {
	data := &HazardRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	saved, err := h.hazards.Report(r.Context(), hazard.Hazard{
		Type:        data.Type,
		Severity:    data.Severity,
		Lat:         data.Lat,
		Lng:         data.Lng,
		Description: data.Description,
	})
	if err != nil {
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, saved)
}

func (h *RoutingHandler) ListHazards(w http.ResponseWriter, r *http.Request) {
	hazards, err := h.hazards.List(r.Context())
	if err != nil {
		render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
		return
	}
	if hazards == nil {
		hazards = []hazard.Hazard{}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, hazards)
}

// ErrServiceError maps service error codes onto HTTP statuses.
func ErrServiceError(err error) render.Renderer {
	status := http.StatusInternalServerError
	switch server.GetCode(err) {
	case server.ErrBadParamInput, server.ErrEmptyRouteData, server.ErrInvalidCoordinates:
		status = http.StatusBadRequest
	case server.ErrNotFound:
		status = http.StatusNotFound
	case server.ErrModeTransitionFailed:
		status = http.StatusConflict
	case server.ErrScorerUnavailable:
		status = http.StatusServiceUnavailable
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorText:      err.Error(),
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}
