package controllers

import (
	"io"
	"net/http"

	"github.com/pantrypal-app/pantrypal-backend/api/responses"
	"github.com/pantrypal-app/pantrypal-backend/internal/bills"
	"github.com/pantrypal-app/pantrypal-backend/pkg/config"
	pkgerrors "github.com/pantrypal-app/pantrypal-backend/pkg/errors"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
)

// BillsExtract accepts a multipart bill image and returns the extracted
// line items. The file field is named "file".
func BillsExtract(svc bills.Service, media config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bills service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		maxBytes := int64(media.MaxUploadMB) << 20
		if maxBytes <= 0 {
			maxBytes = 10 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file"))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(image)
		}

		if logg != nil {
			ctx = logg.WithUserID(ctx, userID.String())
		}

		result, err := svc.Extract(ctx, image, contentType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
