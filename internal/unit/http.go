package unit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/middleware"
	requestutil "github.com/jonasthedevonoertzen/fabula/internal/platform/request"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/respond"
)

type Handler struct {
	service *Service
	gen     TextGenerator
}

// NewHandler creates the unit HTTP handler. gen may be nil when the
// generative backend is not configured; the fill endpoint then reports 503.
func NewHandler(service *Service, gen TextGenerator) *Handler {
	return &Handler{service: service, gen: gen}
}

// RegisterKindRoutes mounts the schema registry listing under /kinds.
func (handler *Handler) RegisterKindRoutes(router chi.Router) {
	router.Get("/", handler.listKinds)
}

// RegisterUnitRoutes mounts the story-independent unit routes under /units.
func (handler *Handler) RegisterUnitRoutes(router chi.Router) {
	router.With(middleware.RequireAuth).Get("/{unitID}/template", handler.getTemplate)
}

// RegisterStoryRoutes mounts the story-scoped unit routes. The parent route
// carries the {storyID} parameter.
func (handler *Handler) RegisterStoryRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)
	router.Get("/", handler.listUnits)
	router.Post("/", handler.createUnit)
	router.Post("/fill", handler.fillFeatures)
	router.Post("/{unitID}/copy", handler.copyUnit)
	router.Get("/{name}", handler.getUnit)
	router.Patch("/{name}", handler.updateUnit)
	router.Delete("/{name}", handler.deleteUnit)
}

func (handler *Handler) listKinds(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.ListKinds())
}

func (handler *Handler) listUnits(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	units, err := handler.service.ListByStory(request.Context(), claims.UserID, requestutil.ID(request, "storyID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, units)
}

func (handler *Handler) getUnit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	u, err := handler.service.Get(request.Context(),
		claims.UserID, requestutil.ID(request, "storyID"), requestutil.Param(request, "name"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, u)
}

func (handler *Handler) createUnit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Kind     Kind                   `json:"kind"`
		Features map[string]interface{} `json:"features"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	u, err := handler.service.Create(request.Context(),
		claims.UserID, claims.Username, requestutil.ID(request, "storyID"), input.Kind, input.Features)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, u)
}

func (handler *Handler) updateUnit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Features map[string]interface{} `json:"features"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	u, err := handler.service.Update(request.Context(),
		claims.UserID, requestutil.ID(request, "storyID"), requestutil.Param(request, "name"), input.Features)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, u)
}

func (handler *Handler) deleteUnit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.Delete(request.Context(),
		claims.UserID, requestutil.ID(request, "storyID"), requestutil.Param(request, "name"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) copyUnit(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	u, err := handler.service.Copy(request.Context(),
		claims.UserID, claims.Username, requestutil.ID(request, "storyID"), requestutil.ID(request, "unitID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, u)
}

func (handler *Handler) getTemplate(writer http.ResponseWriter, request *http.Request) {
	u, err := handler.service.Template(request.Context(), requestutil.ID(request, "unitID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]interface{}{
		"kind":     u.Kind,
		"features": u.Features,
	})
}

func (handler *Handler) fillFeatures(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Kind        Kind                   `json:"kind"`
		Description string                 `json:"description"`
		Draft       map[string]interface{} `json:"draft"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	features, err := handler.service.FillFeatures(request.Context(), handler.gen,
		claims.UserID, requestutil.ID(request, "storyID"), FillInput{
			Kind:        input.Kind,
			Description: input.Description,
			Draft:       input.Draft,
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, features)
}
