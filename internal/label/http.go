package label

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/middleware"
	requestutil "github.com/jonasthedevonoertzen/fabula/internal/platform/request"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/respond"
	"github.com/jonasthedevonoertzen/fabula/pkg/query"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the label routes under /labels.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)
	router.Get("/", handler.listLabels)
	router.Post("/assign", handler.assignLabel)
}

// RegisterUnitSearchRoutes mounts the cross-story unit search under /units.
func (handler *Handler) RegisterUnitSearchRoutes(router chi.Router) {
	router.With(middleware.RequireAuth).Get("/", handler.searchUnits)
}

func (handler *Handler) listLabels(writer http.ResponseWriter, request *http.Request) {
	labels, err := handler.service.ListLabels(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, labels)
}

func (handler *Handler) assignLabel(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload struct {
		Name    string   `json:"name"`
		UnitIDs []string `json:"unit_ids"`
	}
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	l, err := handler.service.Assign(request.Context(), userID, payload.Name, payload.UnitIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, l)
}

func (handler *Handler) searchUnits(writer http.ResponseWriter, request *http.Request) {
	params := request.URL.Query()
	filter := SearchFilter{
		IncludeLabelIDs: query.StringSlice(params.Get("label_ids")),
		ExcludeLabelIDs: query.StringSlice(params.Get("exclude_label_ids")),
		Query:           params.Get("q"),
	}

	matches, err := handler.service.SearchUnits(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, matches)
}
