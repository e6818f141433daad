package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appreview "github.com/apologia/backend/internal/application/review"
	appsermons "github.com/apologia/backend/internal/application/sermons"
	"github.com/apologia/backend/internal/domain/review"
	domain "github.com/apologia/backend/internal/domain/sermons"
	"github.com/apologia/backend/internal/domain/suggest"
	"github.com/apologia/backend/internal/infra/pptx"
	"github.com/apologia/backend/internal/middleware"
)

// maxUploadBytes caps the multipart form kept in memory on upload.
const maxUploadBytes = 64 << 20

type Router struct {
	decksSvc  *appsermons.Service
	reviewSvc *appreview.Service
}

func NewRouter(decksSvc *appsermons.Service, reviewSvc *appreview.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{decksSvc: decksSvc, reviewSvc: reviewSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/sermons", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleUpload))
		rt.Get("/", r.wrap(r.handleList))
		rt.Get("/{id}/slides", r.wrap(r.handleSlides))
		rt.Post("/{id}/slides/{n}/analyze", r.wrap(r.handleAnalyzeSlide))
		rt.Get("/{id}/analysis", r.wrap(r.handleAnalysis))
		rt.Get("/{id}/slides/{n}/analysis", r.wrap(r.handleSlideAnalysis))
		rt.Post("/{id}/slides/{n}/decisions", r.wrap(r.handleSaveDecisions))
		rt.Get("/{id}/decisions", r.wrap(r.handleDecisions))
		rt.Post("/{id}/generate-updated-pptx", r.wrap(r.handleGenerate))
		rt.Get("/{id}/download-updated-pptx", r.wrap(r.handleDownload))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks caller mistakes that map to 400.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br *badRequestError
		switch {
		case errors.As(err, &br),
			errors.Is(err, review.ErrInvalidSlideNumber),
			errors.Is(err, review.ErrInvalidDecision):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrFileMissing),
			errors.Is(err, review.ErrNoAnalysis),
			errors.Is(err, review.ErrNoOutput),
			errors.Is(err, pptx.ErrNoSlide),
			errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, suggest.ErrAgent):
			http.Error(w, "analysis failed: "+err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func deckID(req *http.Request) domain.DeckID {
	return domain.DeckID(chi.URLParam(req, "id"))
}

// slideNumber parses {n}; non-numeric or <1 is a 400.
func slideNumber(req *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(req, "n"))
	if err != nil {
		return 0, badRequest("invalid slide number")
	}
	if err := middleware.ValidateSlideNumber(n); err != nil {
		return 0, badRequest(err.Error())
	}
	return n, nil
}

// POST /sermons
// multipart form: file (required, .pptx), sermonName (required),
// seriesName/weekOrDate/pastorName (optional)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest("invalid multipart form: " + err.Error())
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest("file is required")
	}
	defer file.Close()

	if err := middleware.ValidateUploadFilename(header.Filename); err != nil {
		return badRequest(err.Error())
	}
	if err := middleware.ValidateSermonName(req.FormValue("sermonName")); err != nil {
		return badRequest(err.Error())
	}

	deck, err := r.decksSvc.Upload(req.Context(), appsermons.UploadCommand{
		SermonName: req.FormValue("sermonName"),
		SeriesName: req.FormValue("seriesName"),
		WeekOrDate: req.FormValue("weekOrDate"),
		PastorName: req.FormValue("pastorName"),
		Filename:   header.Filename,
		File:       file,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, deck)
}

// GET /sermons
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.decksSvc.List(req.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Deck{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /sermons/{id}/slides
func (r *Router) handleSlides(w http.ResponseWriter, req *http.Request) error {
	slides, err := r.reviewSvc.Slides(req.Context(), deckID(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, slides)
}

// POST /sermons/{id}/slides/{n}/analyze
func (r *Router) handleAnalyzeSlide(w http.ResponseWriter, req *http.Request) error {
	n, err := slideNumber(req)
	if err != nil {
		return err
	}
	analysis, err := r.reviewSvc.AnalyzeSlide(req.Context(), deckID(req), n)
	if err != nil {
		if errors.Is(err, suggest.ErrAgent) {
			middleware.IncrementAnalysesFailed()
		}
		return err
	}
	middleware.IncrementAnalyses()
	return writeJSON(w, http.StatusOK, analysis)
}

// GET /sermons/{id}/analysis
func (r *Router) handleAnalysis(w http.ResponseWriter, req *http.Request) error {
	doc, err := r.reviewSvc.Analysis(req.Context(), deckID(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, doc)
}

// GET /sermons/{id}/slides/{n}/analysis
func (r *Router) handleSlideAnalysis(w http.ResponseWriter, req *http.Request) error {
	n, err := slideNumber(req)
	if err != nil {
		return err
	}
	analysis, err := r.reviewSvc.SlideAnalysis(req.Context(), deckID(req), n)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, analysis)
}

// POST /sermons/{id}/slides/{n}/decisions
// Body: {"decisions": [{"suggestionId": "...", "decision": "accepted|rejected|edited", "finalText": "..."}]}
func (r *Router) handleSaveDecisions(w http.ResponseWriter, req *http.Request) error {
	n, err := slideNumber(req)
	if err != nil {
		return err
	}
	var body struct {
		Decisions []review.SuggestionDecision `json:"decisions"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid payload: " + err.Error())
	}

	slide, err := r.reviewSvc.SaveDecisions(req.Context(), deckID(req), n, body.Decisions)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, slide)
}

// GET /sermons/{id}/decisions
func (r *Router) handleDecisions(w http.ResponseWriter, req *http.Request) error {
	doc, err := r.reviewSvc.Decisions(req.Context(), deckID(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, doc)
}

// POST /sermons/{id}/generate-updated-pptx
func (r *Router) handleGenerate(w http.ResponseWriter, req *http.Request) error {
	if err := r.reviewSvc.Generate(req.Context(), deckID(req)); err != nil {
		return err
	}
	middleware.IncrementGenerations()
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GET /sermons/{id}/download-updated-pptx
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	path, filename, err := r.reviewSvc.Output(req.Context(), deckID(req))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", pptx.MediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, req, path)
	return nil
}
