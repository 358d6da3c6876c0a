package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/scrapservice"
	"github.com/starford/scraps/internal/search"
	"github.com/starford/scraps/internal/template"
)

// Handler holds API route handlers.
type Handler struct {
	svc *scrapservice.Service
	gen *template.Generator
}

// NewHandler creates a new Handler.
func NewHandler(svc *scrapservice.Service, gen *template.Generator) *Handler {
	return &Handler{svc: svc, gen: gen}
}

// scrapKey extracts the scrap key from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. Book%2FGo).
func scrapKey(r *http.Request) (model.ScrapKey, bool) {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	if strings.TrimSpace(raw) == "" {
		return model.ScrapKey{}, false
	}
	return model.ParseScrapKey(raw), true
}

// GetScrap handles GET /api/scraps/*.
//
//	@Summary		Get a single scrap by key
//	@Tags			scraps
//	@Produce		json
//	@Param			key	path		string	true	"Scrap key (title or ctx/title)"
//	@Success		200	{object}	ScrapDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scraps/{key} [get]
func (h *Handler) GetScrap(w http.ResponseWriter, r *http.Request) {
	key, ok := scrapKey(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return
	}
	d, err := h.svc.GetScrap(r.Context(), key)
	if err != nil {
		writeError(w, "get scrap", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Links handles GET /api/links/*.
//
//	@Summary		List the existing scraps a scrap links to
//	@Tags			scraps
//	@Produce		json
//	@Param			key	path		string	true	"Scrap key"
//	@Success		200	{object}	ScrapList
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links/{key} [get]
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	key, ok := scrapKey(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return
	}
	list, err := h.svc.Links(r.Context(), key)
	if err != nil {
		writeError(w, "links", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Backlinks handles GET /api/backlinks/*.
//
//	@Summary		List the scraps linking to a scrap
//	@Tags			scraps
//	@Produce		json
//	@Param			key	path		string	true	"Scrap key"
//	@Success		200	{object}	ScrapList
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/backlinks/{key} [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	key, ok := scrapKey(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return
	}
	list, err := h.svc.Backlinks(r.Context(), key)
	if err != nil {
		writeError(w, "backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Search handles GET /api/search.
//
//	@Summary		Fuzzy search across scraps
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			logic	query		string	false	"Keyword logic"	Enums(or, and)
//	@Param			num		query		int		false	"Max results"
//	@Success		200		{object}	ScrapList
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	logic, err := search.ParseLogic(r.URL.Query().Get("logic"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("logic must be 'and' or 'or'"))
		return
	}
	num, _ := strconv.Atoi(r.URL.Query().Get("num"))
	list, err := h.svc.Search(r.Context(), q, logic, num)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListTags handles GET /api/tags.
//
//	@Summary		List tags by backlink count
//	@Tags			tags
//	@Produce		json
//	@Success		200	{array}	TagJSON
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// TagBacklinks handles GET /api/tags/*.
//
//	@Summary		List the scraps referring to a tag
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag key"
//	@Success		200	{object}	TagBacklinksResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/{tag} [get]
func (h *Handler) TagBacklinks(w http.ResponseWriter, r *http.Request) {
	key, ok := scrapKey(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("tag is required"))
		return
	}
	keys, err := h.svc.TagBacklinks(r.Context(), key)
	if err != nil {
		writeError(w, "tag backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, TagBacklinksResponse{Results: keys, Count: len(keys)})
}

// ListTemplates handles GET /api/templates.
//
//	@Summary		List scrap templates
//	@Tags			templates
//	@Produce		json
//	@Success		200	{object}	TemplateListResponse
//	@Security		BearerAuth
//	@Router			/templates [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := h.gen.List()
	if err != nil {
		writeError(w, "list templates", err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Templates: names})
}

// GenerateScrap handles POST /api/scraps.
//
//	@Summary		Create a scrap from a template
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateScrapRequest	true	"Template and optional title"
//	@Success		201		{object}	GenerateScrapResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scraps [post]
func (h *Handler) GenerateScrap(w http.ResponseWriter, r *http.Request) {
	var req GenerateScrapRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	path, err := h.gen.Generate(req.Template, req.Title)
	if err != nil {
		writeError(w, "generate scrap", err)
		return
	}
	writeJSON(w, http.StatusCreated, GenerateScrapResponse{Path: path})
}
