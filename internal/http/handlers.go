package http

import (
	"context"
	"mime/multipart"
	stdhttp "net/http"
	"sort"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/wieldyrabbit783/cherished-memories/internal/db"
	"github.com/wieldyrabbit783/cherished-memories/internal/memorial"
	"github.com/wieldyrabbit783/cherished-memories/internal/store"
)

const (
	coverFormField  = "cover_image"
	photosFormField = "photos"
)

type memorialPayload struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	FullName       string `json:"full_name"`
	BirthDate      string `json:"birth_date"`
	DeathDate      string `json:"death_date"`
	Location       string `json:"location"`
	Biography      string `json:"biography"`
	VideoURL       string `json:"video_url,omitempty"`
	TributeMessage string `json:"tribute_message,omitempty"`
	CoverImageURL  string `json:"cover_image_url"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type photoPayload struct {
	ID        string `json:"id"`
	PhotoURL  string `json:"photo_url"`
	CreatedAt string `json:"created_at"`
}

type galleryFailurePayload struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type galleryReportPayload struct {
	Uploaded []photoPayload          `json:"uploaded"`
	Failed   []galleryFailurePayload `json:"failed"`
}

type memorialViewPayload struct {
	Memorial memorialPayload `json:"memorial"`
	Photos   []photoPayload  `json:"photos"`
}

type viewResponse struct {
	Status int
	Body   memorialViewPayload
}

type mutationResponse struct {
	Status int
	Body   struct {
		Memorial memorialPayload      `json:"memorial"`
		Gallery  galleryReportPayload `json:"gallery"`
	}
}

type listResponse struct {
	Status int
	Body   struct {
		Memorials []memorialPayload `json:"memorials"`
	}
}

type slugInput struct {
	Slug string `path:"slug"`
}

type memorialIDInput struct {
	ID string `path:"id"`
}

type photoIDInput struct {
	ID      string `path:"id"`
	PhotoID string `path:"photoID"`
}

type memorialFormInput struct {
	RawBody multipart.Form
}

type memorialUpdateInput struct {
	ID      string `path:"id"`
	RawBody multipart.Form
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Storage  string `json:"storage"`
	}
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) registerPublicMemorialRoute() {
	huma.Get(s.api, "/memorials/{slug}", s.resolveMemorialHandler, func(op *huma.Operation) {
		op.Summary = "Resolve a public memorial page by slug"
	})
}

func (s *Server) registerMemorialRoutes() {
	huma.Get(s.api, "/api/memorials", s.listMemorialsHandler, func(op *huma.Operation) {
		op.Summary = "List the caller's memorials"
	})
	huma.Post(s.api, "/api/memorials", s.createMemorialHandler, func(op *huma.Operation) {
		op.Summary = "Create a memorial"
		op.DefaultStatus = stdhttp.StatusCreated
	})
	huma.Get(s.api, "/api/memorials/{id}", s.getMemorialHandler, func(op *huma.Operation) {
		op.Summary = "Fetch one of the caller's memorials"
	})
	huma.Put(s.api, "/api/memorials/{id}", s.updateMemorialHandler, func(op *huma.Operation) {
		op.Summary = "Update a memorial"
	})
	huma.Delete(s.api, "/api/memorials/{id}", s.deleteMemorialHandler, func(op *huma.Operation) {
		op.Summary = "Delete a memorial and its images"
		op.DefaultStatus = stdhttp.StatusNoContent
	})
	huma.Delete(s.api, "/api/memorials/{id}/photos/{photoID}", s.removePhotoHandler, func(op *huma.Operation) {
		op.Summary = "Remove a gallery photo"
		op.DefaultStatus = stdhttp.StatusNoContent
	})
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"
	resp.Body.Storage = "ok"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func (s *Server) resolveMemorialHandler(ctx context.Context, input *slugInput) (*viewResponse, error) {
	slug := strings.TrimSpace(input.Slug)
	view, err := s.memorials.ResolveBySlug(ctx, slug)
	if err != nil {
		if eris.Is(err, memorial.ErrNotFound) {
			// A miss on the public page is a routine outcome, not a fault.
			return nil, huma.Error404NotFound("memorial not found")
		}
		return nil, s.translateError(ctx, err, "resolving memorial", logrus.Fields{"slug": slug})
	}

	return &viewResponse{Status: stdhttp.StatusOK, Body: viewPayload(view)}, nil
}

func (s *Server) listMemorialsHandler(ctx context.Context, _ *struct{}) (*listResponse, error) {
	ownerID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	memorials, err := s.memorials.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.translateError(ctx, err, "listing memorials", nil)
	}

	resp := &listResponse{Status: stdhttp.StatusOK}
	resp.Body.Memorials = make([]memorialPayload, 0, len(memorials))
	for _, m := range memorials {
		resp.Body.Memorials = append(resp.Body.Memorials, memorialToPayload(m))
	}
	return resp, nil
}

func (s *Server) createMemorialHandler(ctx context.Context, input *memorialFormInput) (*mutationResponse, error) {
	ownerID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	fields := fieldsFromForm(input.RawBody)
	cover, photos, closeFiles, err := uploadsFromForm(input.RawBody)
	if err != nil {
		return nil, s.translateError(ctx, err, "reading upload files", nil)
	}
	defer closeFiles()

	result, err := s.memorials.Create(ctx, ownerID, fields, cover, photos)
	if err != nil {
		return nil, s.translateError(ctx, err, "creating memorial", nil)
	}

	resp := &mutationResponse{Status: stdhttp.StatusCreated}
	resp.Body.Memorial = memorialToPayload(result.Memorial)
	resp.Body.Gallery = galleryToPayload(result.Gallery)
	return resp, nil
}

func (s *Server) getMemorialHandler(ctx context.Context, input *memorialIDInput) (*viewResponse, error) {
	ownerID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.memorials.GetOwned(ctx, ownerID, input.ID)
	if err != nil {
		return nil, s.translateError(ctx, err, "loading memorial", logrus.Fields{"memorial_id": input.ID})
	}

	return &viewResponse{Status: stdhttp.StatusOK, Body: viewPayload(view)}, nil
}

func (s *Server) updateMemorialHandler(ctx context.Context, input *memorialUpdateInput) (*mutationResponse, error) {
	ownerID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	fields := fieldsFromForm(input.RawBody)
	cover, photos, closeFiles, err := uploadsFromForm(input.RawBody)
	if err != nil {
		return nil, s.translateError(ctx, err, "reading upload files", nil)
	}
	defer closeFiles()

	result, err := s.memorials.Update(ctx, ownerID, input.ID, fields, cover, photos)
	if err != nil {
		return nil, s.translateError(ctx, err, "updating memorial", logrus.Fields{"memorial_id": input.ID})
	}

	resp := &mutationResponse{Status: stdhttp.StatusOK}
	resp.Body.Memorial = memorialToPayload(result.Memorial)
	resp.Body.Gallery = galleryToPayload(result.Gallery)
	return resp, nil
}

func (s *Server) deleteMemorialHandler(ctx context.Context, input *memorialIDInput) (*struct{}, error) {
	ownerID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.memorials.Delete(ctx, ownerID, input.ID); err != nil {
		return nil, s.translateError(ctx, err, "deleting memorial", logrus.Fields{"memorial_id": input.ID})
	}

	return nil, nil
}

func (s *Server) removePhotoHandler(ctx context.Context, input *photoIDInput) (*struct{}, error) {
	ownerID, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.memorials.RemovePhoto(ctx, ownerID, input.ID, input.PhotoID); err != nil {
		return nil, s.translateError(ctx, err, "removing photo", logrus.Fields{
			"memorial_id": input.ID,
			"photo_id":    input.PhotoID,
		})
	}

	return nil, nil
}

func (s *Server) requireOwner(ctx context.Context) (string, error) {
	ownerID := OwnerIDFromContext(ctx)
	if ownerID == "" {
		return "", huma.Error401Unauthorized("authentication required")
	}
	return ownerID, nil
}

// translateError maps domain errors onto HTTP status codes and records
// everything that indicates a fault on our side.
func (s *Server) translateError(ctx context.Context, err error, message string, fields logrus.Fields) error {
	var validationErr *memorial.ValidationError
	if eris.As(err, &validationErr) {
		names := make([]string, 0, len(validationErr.Fields))
		for name := range validationErr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		details := make([]error, 0, len(names))
		for _, name := range names {
			details = append(details, &huma.ErrorDetail{
				Message:  validationErr.Fields[name],
				Location: "body." + name,
			})
		}
		return huma.Error422UnprocessableEntity("validation failed", details...)
	}

	var fieldErrs validator.ValidationErrors
	if eris.As(err, &fieldErrs) {
		details := make([]error, 0, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			details = append(details, &huma.ErrorDetail{
				Message:  fieldErr.Error(),
				Location: "body." + fieldErr.Field(),
			})
		}
		return huma.Error422UnprocessableEntity("validation failed", details...)
	}

	if eris.Is(err, memorial.ErrNotFound) {
		return huma.Error404NotFound("memorial not found")
	}
	if eris.Is(err, store.ErrProductNotFound) {
		return huma.Error404NotFound("product not found")
	}

	var uploadErr *memorial.UploadError
	if eris.As(err, &uploadErr) {
		s.recordError(ctx, err, message, fields)
		return huma.NewError(stdhttp.StatusBadGateway, "storing image failed")
	}

	s.recordError(ctx, err, message, fields)
	return huma.Error500InternalServerError("internal error")
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}

func fieldsFromForm(form multipart.Form) memorial.Fields {
	value := func(name string) string {
		if values := form.Value[name]; len(values) > 0 {
			return values[0]
		}
		return ""
	}

	return memorial.Fields{
		FullName:       value("full_name"),
		BirthDate:      value("birth_date"),
		DeathDate:      value("death_date"),
		Location:       value("location"),
		Biography:      value("biography"),
		VideoURL:       value("video_url"),
		TributeMessage: value("tribute_message"),
	}
}

// uploadsFromForm opens the cover and gallery files from the multipart form.
// The returned closer releases every opened file and must be called once the
// service has consumed the readers.
func uploadsFromForm(form multipart.Form) (*memorial.FileUpload, []memorial.FileUpload, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	open := func(header *multipart.FileHeader) (memorial.FileUpload, error) {
		file, err := header.Open()
		if err != nil {
			return memorial.FileUpload{}, eris.Wrapf(err, "opening upload %s", header.Filename)
		}
		opened = append(opened, file)
		return memorial.FileUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}, nil
	}

	var cover *memorial.FileUpload
	if headers := form.File[coverFormField]; len(headers) > 0 {
		upload, err := open(headers[0])
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		cover = &upload
	}

	var photos []memorial.FileUpload
	for _, header := range form.File[photosFormField] {
		upload, err := open(header)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		photos = append(photos, upload)
	}

	return cover, photos, closeAll, nil
}

func viewPayload(view *memorial.View) memorialViewPayload {
	payload := memorialViewPayload{
		Memorial: memorialToPayload(view.Memorial),
		Photos:   make([]photoPayload, 0, len(view.Photos)),
	}
	for _, photo := range view.Photos {
		payload.Photos = append(payload.Photos, photoToPayload(photo))
	}
	return payload
}

func memorialToPayload(m memorial.Memorial) memorialPayload {
	return memorialPayload{
		ID:             m.ID,
		Slug:           m.Slug,
		FullName:       m.FullName,
		BirthDate:      m.BirthDate,
		DeathDate:      m.DeathDate,
		Location:       m.Location,
		Biography:      m.Biography,
		VideoURL:       m.VideoURL,
		TributeMessage: m.TributeMessage,
		CoverImageURL:  m.CoverImageURL,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func photoToPayload(p memorial.Photo) photoPayload {
	return photoPayload{
		ID:        p.ID,
		PhotoURL:  p.PhotoURL,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func galleryToPayload(report memorial.GalleryReport) galleryReportPayload {
	payload := galleryReportPayload{
		Uploaded: make([]photoPayload, 0, len(report.Uploaded)),
		Failed:   make([]galleryFailurePayload, 0, len(report.Failed)),
	}
	for _, photo := range report.Uploaded {
		payload.Uploaded = append(payload.Uploaded, photoToPayload(photo))
	}
	for _, failure := range report.Failed {
		payload.Failed = append(payload.Failed, galleryFailurePayload{
			Filename: failure.Filename,
			Reason:   failure.Reason,
		})
	}
	return payload
}
