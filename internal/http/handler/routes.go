package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"readable/internal/service"
	"readable/internal/speech"
)

// Deps are the services served over HTTP. Archive is nil when uploads are not persisted.
type Deps struct {
	Text    service.TextService
	Archive service.ArchiveService
	Logger  *slog.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	app.Get("/health", HealthCheck(d.Archive))
	app.Get("/healthz", LivenessProbe())

	app.Post("/simplify", Simplify(d.Text, log))

	api := app.Group("/api")
	api.Post("/upload", UploadText(d.Text, log))
	api.Post("/simplify", Simplify(d.Text, log))
	api.Post("/speech", Speech(d.Text, log))
	api.Post("/readability", Readability(d.Text, log))

	uploads := app.Group("/uploads")
	if d.Archive == nil {
		uploads.All("/*", archiveDisabled)
		uploads.All("", archiveDisabled)
		return
	}
	uploads.Get("", ListUploads(d.Archive, log))
	uploads.Get("/:id", GetUpload(d.Archive, log))
	uploads.Get("/:id/download", DownloadUpload(d.Archive, log))
	uploads.Delete("/:id", DeleteUpload(d.Archive, log))
}

// HealthCheck godoc
// @Summary Readiness probe
// @Description Checks the archive backends when they are configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(archive service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if archive == nil {
			return c.JSON(fiber.Map{"status": "healthy", "archive": "disabled"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := archive.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.JSON(fiber.Map{"status": "healthy", "archive": "enabled"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadText godoc
// @Summary Extract text from an upload
// @Description Accepts a .txt or .pdf file and returns its normalized text.
// @Tags text
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document (.txt or .pdf)"
// @Success 200 {object} model.ExtractedText
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Router /api/upload [post]
func UploadText(svc service.TextService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			if form, ferr := c.MultipartForm(); ferr == nil {
				if _, ok := form.Value["file"]; ok {
					return writeError(c, fiber.StatusBadRequest, "NO_SELECTED_FILE", "No selected file")
				}
			}
			return writeError(c, fiber.StatusBadRequest, "NO_FILE_PART", "No file part")
		}
		if fh.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "NO_SELECTED_FILE", "No selected file")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		out, err := svc.ExtractUpload(c.UserContext(), service.UploadInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(out)
	}
}

// textRequest is the JSON body of text endpoints. Text is a pointer so a
// missing field can be told apart from an empty one.
type textRequest struct {
	Text  *string `json:"text"`
	Voice string  `json:"voice,omitempty"`
}

func parseText(c *fiber.Ctx) (textRequest, error) {
	var req textRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.Text == nil {
		return req, service.ErrTextRequired
	}
	return req, nil
}

// Simplify godoc
// @Summary Simplify text
// @Description Rewrites text in plainer words and scores both versions.
// @Tags text
// @Accept json
// @Produce json
// @Param body body textRequest true "Text to simplify"
// @Success 200 {object} model.Simplification
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/simplify [post]
func Simplify(svc service.TextService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseText(c)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		res, err := svc.Simplify(c.UserContext(), *req.Text)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// Speech godoc
// @Summary Synthesize speech
// @Description Returns the text read aloud as an MP3 attachment.
// @Tags text
// @Accept json
// @Produce audio/mpeg
// @Param body body textRequest true "Text and optional voice"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/speech [post]
func Speech(svc service.TextService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseText(c)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		audio, err := svc.Speak(c.UserContext(), *req.Text, req.Voice)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		c.Attachment(speech.DefaultFilename)
		c.Set(fiber.HeaderContentType, audio.ContentType)
		return c.Send(audio.Data)
	}
}

// Readability godoc
// @Summary Readability metrics
// @Tags text
// @Accept json
// @Produce json
// @Param body body textRequest true "Text to score"
// @Success 200 {object} readability.Metrics
// @Failure 400 {object} errorPayload
// @Router /api/readability [post]
func Readability(svc service.TextService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseText(c)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		res, err := svc.Analyze(c.UserContext(), *req.Text)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res.Metrics)
	}
}

// ListUploads godoc
// @Summary List archived uploads
// @Tags uploads
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.UploadListResult
// @Failure 400 {object} errorPayload
// @Router /uploads [get]
func ListUploads(svc service.ArchiveService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// GetUpload godoc
// @Summary Get an archived upload
// @Tags uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} model.Upload
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /uploads/{id} [get]
func GetUpload(svc service.ArchiveService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(u)
	}
}

// downloadResponse carries a pre-signed link to the raw upload.
type downloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// DownloadUpload godoc
// @Summary Pre-signed download link for an archived upload
// @Tags uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} downloadResponse
// @Failure 404 {object} errorPayload
// @Router /uploads/{id}/download [get]
func DownloadUpload(svc service.ArchiveService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(downloadResponse{URL: url, ExpiresIn: int(service.DownloadURLExpiry.Seconds())})
	}
}

// DeleteUpload godoc
// @Summary Delete an archived upload
// @Tags uploads
// @Param id path string true "Upload ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /uploads/{id} [delete]
func DeleteUpload(svc service.ArchiveService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func archiveDisabled(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusServiceUnavailable, "ARCHIVE_DISABLED", "upload archive is not configured")
}
