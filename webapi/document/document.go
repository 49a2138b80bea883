// Package document exposes student document uploads.
package document

import (
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/middleware"
	authsvc "github.com/amirasaad/studentrelief/pkg/service/auth"
	documentsvc "github.com/amirasaad/studentrelief/pkg/service/document"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// MaxFileSize bounds multipart document uploads.
const MaxFileSize = 10 << 20

func Routes(app *fiber.App, svc *documentsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	group := app.Group("/documents", middleware.JwtProtected(cfg.Auth.Jwt, authSvc), middleware.RequireRole(domain.RoleStudent))
	group.Post("/", UploadDocument(svc))
	group.Post("/file", UploadDocumentFile(svc))
	group.Get("/", ListDocuments(svc))
}

// UploadDocument records a document stored out of band and notifies every admin.
// @Summary Record a document
// @Tags documents
// @Accept json
// @Produce json
// @Param request body UploadDocumentRequest true "Document"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /documents [post]
// @Security Bearer
func UploadDocument(svc *documentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[UploadDocumentRequest](c)
		if input == nil {
			return err // error response already written
		}
		id, _ := middleware.CurrentIdentity(c)
		doc, err := svc.Upload(c.UserContext(), id, documentsvc.UploadInput{
			Type:     domain.DocumentType(input.Type),
			FileName: input.FileName,
			FileURL:  input.FileURL,
			FileSize: input.FileSize,
			MimeType: input.MimeType,
		})
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Document uploaded", doc)
	}
}

// UploadDocumentFile stores an uploaded file and records it.
// @Summary Upload a document file
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 502 {object} common.ProblemDetails
// @Router /documents/file [post]
// @Security Bearer
func UploadDocumentFile(svc *documentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docType, err := domain.ParseDocumentType(c.FormValue("type"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid document type", err)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Missing file", nil, "multipart field \"file\" is required")
		}
		if fh.Size > MaxFileSize {
			return common.ProblemDetailsJSON(c, "File too large", nil, "documents are limited to 10MB", fiber.StatusRequestEntityTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid file", err, fiber.StatusBadRequest)
		}
		defer f.Close() //nolint:errcheck

		id, _ := middleware.CurrentIdentity(c)
		doc, err := svc.UploadFile(c.UserContext(), id, documentsvc.FileInput{
			Type:     docType,
			FileName: fh.Filename,
			MimeType: fh.Header.Get(fiber.HeaderContentType),
			Size:     fh.Size,
			Body:     f,
		})
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Document uploaded", doc)
	}
}

// ListDocuments returns the caller's documents.
// @Summary List my documents
// @Tags documents
// @Produce json
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /documents [get]
// @Security Bearer
func ListDocuments(svc *documentsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := middleware.CurrentIdentity(c)
		docs, err := svc.ListMine(c.UserContext(), id)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Documents fetched", docs)
	}
}
