package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/gateway"
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/logger"
	"github.com/hpungsan/quill/internal/ops"
	"github.com/hpungsan/quill/internal/prompt"
)

// maxJSONBody bounds API request bodies.
const maxJSONBody = 1 << 20

// Handlers contains HTTP route handlers for the studio UI and JSON API.
type Handlers struct {
	store    *history.Store
	gateway  *gateway.Gateway
	log      *logger.Logger
	renderer *Renderer
}

// HandleStudio handles GET /: the empty studio form.
func (h *Handlers) HandleStudio(w http.ResponseWriter, r *http.Request) {
	form := StudioForm{
		Flags:        prompt.DefaultQualityFlags(),
		HistoryDepth: prompt.DefaultHistoryDepth,
	}
	h.renderStudio(w, r, http.StatusOK, form, nil, "")
}

// HandleStudioSubmit handles POST / to apply a template, preview the compiled
// prompt or generate a refined one.
func (h *Handlers) HandleStudioSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidInput("invalid form data"))
		return
	}
	form := parseStudioForm(r.PostForm)

	switch r.PostFormValue("action") {
	case "apply":
		catalog, err := prompt.BuiltinCatalog()
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInternal(err))
			return
		}
		tpl, ok := catalog.FindTemplate(form.Template)
		if !ok {
			h.renderStudio(w, r, http.StatusBadRequest, form, nil, "Pick a template to apply.")
			return
		}
		form.Fields = tpl.Defaults
		h.renderStudio(w, r, http.StatusOK, form, nil, "")

	case "preview":
		out, err := ops.Compile(h.store, form.compileInput())
		if err != nil {
			h.studioError(w, r, form, err)
			return
		}
		h.renderStudio(w, r, http.StatusOK, form, &ops.GenerateOutput{Prompt: out.Prompt, Compiled: out.Prompt}, "")

	default:
		out, err := ops.Generate(r.Context(), h.store, h.gateway, h.log, ops.GenerateInput{
			CompileInput: form.compileInput(),
			ClientID:     gateway.ClientID(r),
		})
		if err != nil {
			h.studioError(w, r, form, err)
			return
		}
		h.renderStudio(w, r, http.StatusOK, form, out, "")
	}
}

// HandleHistoryDetail handles GET /history/{id}: one entry rendered as markdown.
func (h *Handlers) HandleHistoryDetail(w http.ResponseWriter, r *http.Request) {
	entry, err := ops.ShowHistory(h.store, ops.ShowHistoryInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   "History entry",
			Version: h.renderer.version,
			Nav:     "history",
		},
		Entry:        entry,
		RenderedHTML: renderMarkdown(entry.Content),
	})
}

// HandleHistoryFavorite handles POST /history/{id}/favorite from the studio or detail page.
func (h *Handlers) HandleHistoryFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := ops.ToggleFavorite(r.Context(), h.store, ops.ToggleFavoriteInput{ID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	target := "/"
	if r.FormValue("return") == "detail" {
		target = "/history/" + url.PathEscape(id)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleHistoryClear handles POST /history/clear.
func (h *Handlers) HandleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.ClearHistory(r.Context(), h.store); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleAPICompile handles POST /api/compile.
func (h *Handlers) HandleAPICompile(w http.ResponseWriter, r *http.Request) {
	var input ops.CompileInput
	if err := decodeJSON(w, r, &input); err != nil {
		gateway.WriteError(w, err)
		return
	}

	out, err := ops.Compile(h.store, input)
	if err != nil {
		gateway.WriteError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAPIGenerate handles POST /api/studio/generate, the full studio flow
// with fallback to the compiled prompt.
func (h *Handlers) HandleAPIGenerate(w http.ResponseWriter, r *http.Request) {
	var input ops.CompileInput
	if err := decodeJSON(w, r, &input); err != nil {
		gateway.WriteError(w, err)
		return
	}

	out, err := ops.Generate(r.Context(), h.store, h.gateway, h.log, ops.GenerateInput{
		CompileInput: input,
		ClientID:     gateway.ClientID(r),
	})
	if err != nil {
		gateway.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	renderJSON(w, http.StatusOK, out)
}

// HandleAPIHistory handles GET /api/history.
func (h *Handlers) HandleAPIHistory(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListHistory(h.store, ops.ListHistoryInput{
		FavoritesOnly: parseBoolParam(r, "favorites"),
		Limit:         parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:        parseIntParam(r, "offset", 0),
	})
	if err != nil {
		gateway.WriteError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAPIFavorite handles POST /api/history/{id}/favorite.
func (h *Handlers) HandleAPIFavorite(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ToggleFavorite(r.Context(), h.store, ops.ToggleFavoriteInput{ID: r.PathValue("id")})
	if err != nil {
		gateway.WriteError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAPIClear handles DELETE /api/history.
func (h *Handlers) HandleAPIClear(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ClearHistory(r.Context(), h.store)
	if err != nil {
		gateway.WriteError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAPITemplates handles GET /api/templates.
func (h *Handlers) HandleAPITemplates(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListTemplates()
	if err != nil {
		gateway.WriteError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

func (h *Handlers) renderStudio(w http.ResponseWriter, r *http.Request, status int, form StudioForm, result *ops.GenerateOutput, msg string) {
	catalog, err := prompt.BuiltinCatalog()
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	data := StudioPageData{
		PageData: PageData{
			Title:   "Studio",
			Version: h.renderer.version,
			Nav:     "studio",
		},
		Form:    form,
		Catalog: catalog,
		Depths:  prompt.HistoryDepthOptions,
		History: h.store.Entries(),
		Result:  result,
		Error:   msg,
	}
	if result != nil {
		data.ResultHTML = renderMarkdown(result.Prompt)
	}
	h.renderer.renderPageStatus(w, status, "studio", data)
}

// studioError re-renders the form with a user-facing message.
func (h *Handlers) studioError(w http.ResponseWriter, r *http.Request, form StudioForm, err error) {
	qErr := errors.As(err)
	if qErr.Code == errors.ErrInternal {
		h.log.Error("studio request failed", "error", err)
	}
	h.renderStudio(w, r, qErr.Status, form, nil, publicMessage(qErr))
}

// parseStudioForm reads the studio form. Unchecked boxes are absent, so every
// quality flag is false unless submitted.
func parseStudioForm(v url.Values) StudioForm {
	depth, err := strconv.Atoi(v.Get("history_depth"))
	if err != nil {
		depth = prompt.DefaultHistoryDepth
	}
	return StudioForm{
		Template: strings.TrimSpace(v.Get("template")),
		Fields: prompt.FieldSet{
			Goal:            v.Get("goal"),
			Persona:         v.Get("persona"),
			Audience:        v.Get("audience"),
			Context:         v.Get("context"),
			References:      v.Get("references"),
			Constraints:     v.Get("constraints"),
			Format:          v.Get("format"),
			Tone:            v.Get("tone"),
			Length:          v.Get("length"),
			Language:        v.Get("language"),
			SuccessCriteria: v.Get("success_criteria"),
		},
		Flags: prompt.QualityFlags{
			AskClarifying:    checked(v, "ask_clarifying"),
			StateAssumptions: checked(v, "state_assumptions"),
			IncludeChecklist: checked(v, "include_checklist"),
		},
		IncludeHistory: checked(v, "include_history"),
		HistoryDepth:   prompt.ClampDepth(depth),
	}
}

// compileInput converts the form to an ops input. The form already holds any
// applied template values, so no template overlay is requested.
func (f StudioForm) compileInput() ops.CompileInput {
	flags := f.Flags
	return ops.CompileInput{
		Fields:         f.Fields,
		Flags:          &flags,
		IncludeHistory: f.IncludeHistory,
		HistoryDepth:   f.HistoryDepth,
	}
}

func checked(v url.Values, name string) bool {
	s := v.Get(name)
	return s == "on" || s == "true" || s == "1"
}

// decodeJSON decodes a bounded JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewInvalidInput("invalid JSON body")
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
