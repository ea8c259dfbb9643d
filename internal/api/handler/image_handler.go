package handler

import (
	"errors"
	"net/http"
	"strings"

	"msgboard/internal/api/middleware"
	"msgboard/internal/app/service"
	"msgboard/internal/common"
	"msgboard/internal/logging"

	"github.com/go-chi/chi/v5"
)

const (
	imageField = "image"
	// Room for multipart boundaries and headers on top of the file itself.
	multipartOverhead = 1 << 20
	multipartMemory   = 1 << 20
)

type ImageHandler struct {
	imageService *service.ImageService
	log          logging.Logger
	production   bool
}

func NewImageHandler(is *service.ImageService, log logging.Logger, production bool) *ImageHandler {
	return &ImageHandler{imageService: is, log: log, production: production}
}

func (h *ImageHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(authed chi.Router) {
		authed.Use(requireAuth)
		authed.Get("/", h.listImages)          // GET /api/images
		authed.Post("/upload", h.uploadImage) // POST /api/images/upload
	})
	r.Get("/{imageID}", h.getImage) // GET /api/images/{id}
}

func (h *ImageHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	limit := h.imageService.MaxBytes() + multipartOverhead
	if r.ContentLength > limit {
		common.RespondWithErr(w, r, h.imageService.TooLargeError(), h.production)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			common.RespondWithErr(w, r, h.imageService.TooLargeError(), h.production)
			return
		}
		common.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[imageField]
	if len(files) == 0 {
		common.RespondWithError(w, r, http.StatusBadRequest, "No image file provided")
		return
	}
	if len(files) > 1 || len(r.MultipartForm.File) > 1 {
		common.RespondWithError(w, r, http.StatusBadRequest, "Exactly one file is accepted, in field \"image\"")
		return
	}
	fh := files[0]

	f, err := fh.Open()
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	defer f.Close()

	in := service.UploadInput{OriginalName: fh.Filename, Size: fh.Size, Content: f}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		in.UserID = &user.ID
	}

	img, err := h.imageService.Upload(r.Context(), in)
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	h.imageService.URLFor(baseURL(r), img)
	common.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Image uploaded successfully",
		"image":   img,
	})
}

func (h *ImageHandler) listImages(w http.ResponseWriter, r *http.Request) {
	imgs, err := h.imageService.List(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	base := baseURL(r)
	for i := range imgs {
		h.imageService.URLFor(base, &imgs[i])
	}
	common.RespondWithJSON(w, http.StatusOK, imgs)
}

func (h *ImageHandler) getImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.imageService.Get(r.Context(), chi.URLParam(r, "imageID"))
	if err != nil {
		respondErr(w, r, h.log, err, h.production)
		return
	}
	h.imageService.URLFor(baseURL(r), img)
	common.RespondWithJSON(w, http.StatusOK, img)
}

// baseURL is scheme://host as the client addressed this server.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host
}
