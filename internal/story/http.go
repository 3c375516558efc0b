// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package story

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonasthedevonoertzen/fabula/internal/export"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/middleware"
	requestutil "github.com/jonasthedevonoertzen/fabula/internal/platform/request"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/respond"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
	"github.com/jonasthedevonoertzen/fabula/pkg/pagination"
	"github.com/jonasthedevonoertzen/fabula/pkg/slug"
)

// Handler exposes the story HTTP surface, including document exports and
// AI narrative generation. The unit handler is mounted under each story so
// unit routes inherit the story scope.
type Handler struct {
	service *Service
	units   *unit.Handler
	gen     unit.TextGenerator
}

// NewHandler creates a story Handler. gen may be nil, in which case the
// narrative endpoint reports the feature as unavailable.
func NewHandler(service *Service, units *unit.Handler, gen unit.TextGenerator) *Handler {
	return &Handler{service: service, units: units, gen: gen}
}

// RegisterRoutes mounts the story routes. All of them require auth.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)
	router.Get("/", handler.listStories)
	router.Post("/", handler.createStory)
	router.Route("/{storyID}", func(router chi.Router) {
		router.Get("/", handler.getStory)
		router.Get("/export/{format}", handler.exportStory)
		router.Get("/narrative", handler.generateNarrative)
		router.Route("/units", handler.units.RegisterStoryRoutes)
	})
}

func (handler *Handler) listStories(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	stories, total, err := handler.service.List(request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, stories, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) createStory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.Create(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, s)
}

func (handler *Handler) getStory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, units, err := handler.service.Detail(request.Context(), userID, requestutil.ID(request, "storyID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]interface{}{
		"story": s,
		"units": units,
	})
}

func (handler *Handler) exportStory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	doc, err := handler.buildDocument(request, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filename := slug.From(doc.Title)
	if filename == "" {
		filename = "story"
	}

	var body []byte
	var contentType, extension string
	switch format := requestutil.Param(request, "format"); format {
	case "json":
		body, err = export.JSON(doc)
		contentType, extension = "application/json", "json"
	case "html":
		body, err = export.HTML(doc)
		contentType, extension = "text/html; charset=utf-8", "html"
	case "text":
		body = export.Text(doc)
		contentType, extension = "text/plain; charset=utf-8", "txt"
	case "pdf":
		body, err = export.PDF(doc)
		contentType, extension = "application/pdf", "pdf"
	default:
		respond.Error(writer, request, apperr.ValidationError("Unknown export format: "+format))
		return
	}
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.Attachment(writer, contentType, filename+"."+extension, body)
}

func (handler *Handler) generateNarrative(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if handler.gen == nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Narrative generation is not configured"))
		return
	}

	doc, err := handler.buildDocument(request, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	narrative, err := handler.gen.GenerateText(request.Context(), "", export.NarrativePrompt(doc))
	if err != nil {
		respond.Error(writer, request, apperr.BadGateway("Narrative generation failed", err))
		return
	}

	respond.OK(writer, map[string]string{"narrative": narrative})
}

func (handler *Handler) buildDocument(request *http.Request, userID string) (*export.Document, error) {
	s, units, err := handler.service.Detail(request.Context(), userID, requestutil.ID(request, "storyID"))
	if err != nil {
		return nil, err
	}
	return &export.Document{
		Title:           s.Name,
		SettingAndStyle: s.SettingAndStyle,
		MainChallenge:   s.MainChallenge,
		Units:           units,
	}, nil
}
