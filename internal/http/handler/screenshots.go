package handler

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shotapi/internal/service"
)

type metadataRequest struct {
	Metadata json.RawMessage `json:"metadata"`
}

// keyParam returns the unescaped :key route parameter.
func keyParam(c *fiber.Ctx) (string, bool) {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil || strings.TrimSpace(key) == "" {
		return "", false
	}
	return key, true
}

// ListScreenshots godoc
// @Summary      List screenshots
// @Description  Lists stored screenshots with optional search, tag filter, sort and pagination.
// @Tags         screenshots
// @Produce      json
// @Security     BearerAuth
// @Param        q         query     string  false  "Case-insensitive search over key, title, description and tags"
// @Param        tags      query     string  false  "Comma-separated tags; every tag must be present"
// @Param        sort      query     string  false  "recent|oldest|name-asc|name-desc|size-largest|size-smallest"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        per_page  query     int     false  "Page size (0 = all, max 100)"
// @Success      200       {object}  successEnvelope{data=model.ScreenshotList}
// @Failure      400       {object}  failureEnvelope
// @Failure      401       {object}  failureEnvelope
// @Failure      500       {object}  failureEnvelope
// @Router       /screenshots [get]
func ListScreenshots(svc service.ScreenshotService, log *zap.Logger) fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		page, err := queryInt(c, "page", 1)
		if err != nil {
			return Fail(fiber.StatusBadRequest, MsgInvalidQuery, "page must be an integer")
		}
		perPage, err := queryInt(c, "per_page", 0)
		if err != nil {
			return Fail(fiber.StatusBadRequest, MsgInvalidQuery, "per_page must be an integer")
		}

		res, err := svc.List(c.UserContext(), service.ListQuery{
			Query:   c.Query("q"),
			Tags:    splitTags(c.Query("tags")),
			Sort:    c.Query("sort"),
			Page:    page,
			PerPage: perPage,
		})
		if err != nil {
			return fromError(c, log, err)
		}
		return OK("Screenshots retrieved successfully", res)
	})
}

// GetScreenshot godoc
// @Summary      Get screenshot
// @Tags         screenshots
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Object key"
// @Success      200  {object}  successEnvelope{data=model.Screenshot}
// @Failure      401  {object}  failureEnvelope
// @Failure      404  {object}  failureEnvelope
// @Router       /screenshots/{key} [get]
func GetScreenshot(svc service.ScreenshotService, log *zap.Logger) fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		key, ok := keyParam(c)
		if !ok {
			return Fail(fiber.StatusBadRequest, MsgKeyRequired, nil)
		}
		shot, err := svc.Get(c.UserContext(), key)
		if err != nil {
			return fromError(c, log, err)
		}
		return OK("Screenshot details retrieved successfully", shot)
	})
}

// DeleteScreenshot godoc
// @Summary      Delete screenshot
// @Tags         screenshots
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Object key"
// @Success      200  {object}  successEnvelope
// @Failure      401  {object}  failureEnvelope
// @Failure      404  {object}  failureEnvelope
// @Router       /screenshots/{key} [delete]
func DeleteScreenshot(svc service.ScreenshotService, log *zap.Logger) fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		key, ok := keyParam(c)
		if !ok {
			return Fail(fiber.StatusBadRequest, MsgKeyRequired, nil)
		}
		if err := svc.Delete(c.UserContext(), key); err != nil {
			return fromError(c, log, err)
		}
		return OK("Screenshot deleted successfully", fiber.Map{"key": key})
	})
}

// UpdateMetadata godoc
// @Summary      Update screenshot metadata
// @Description  Merges the given fields over the stored metadata. null or empty values remove a field.
// @Tags         metadata
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        key   path      string  true  "Object key"
// @Param        body  body      object  true  "{metadata:{description,title,category,tags}}"
// @Success      200   {object}  successEnvelope{data=model.MetadataResult}
// @Failure      400   {object}  failureEnvelope
// @Failure      401   {object}  failureEnvelope
// @Failure      404   {object}  failureEnvelope
// @Failure      409   {object}  failureEnvelope
// @Router       /screenshots/{key}/metadata [patch]
func UpdateMetadata(svc service.ScreenshotService, log *zap.Logger) fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		key, ok := keyParam(c)
		if !ok {
			return Fail(fiber.StatusBadRequest, MsgKeyRequired, nil)
		}

		body := bytes.TrimSpace(c.Body())
		if len(body) == 0 {
			return Fail(fiber.StatusBadRequest, MsgBodyRequired, nil)
		}
		var req metadataRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return Fail(fiber.StatusBadRequest, MsgInvalidJSON, nil)
		}
		var raw any
		if len(req.Metadata) > 0 {
			if err := json.Unmarshal(req.Metadata, &raw); err != nil {
				return Fail(fiber.StatusBadRequest, MsgInvalidJSON, nil)
			}
		}
		if _, isObject := raw.(map[string]any); !isObject {
			return Fail(fiber.StatusBadRequest, MsgMetadataNotObject, nil)
		}

		res, err := svc.UpdateMetadata(c.UserContext(), key, raw)
		if err != nil {
			return fromError(c, log, err)
		}
		return OK("Metadata updated successfully", res)
	})
}

// ClearMetadata godoc
// @Summary      Remove all screenshot metadata
// @Tags         metadata
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Object key"
// @Success      200  {object}  successEnvelope{data=model.MetadataResult}
// @Failure      401  {object}  failureEnvelope
// @Failure      404  {object}  failureEnvelope
// @Failure      409  {object}  failureEnvelope
// @Router       /screenshots/{key}/metadata [delete]
func ClearMetadata(svc service.ScreenshotService, log *zap.Logger) fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		key, ok := keyParam(c)
		if !ok {
			return Fail(fiber.StatusBadRequest, MsgKeyRequired, nil)
		}
		res, err := svc.ClearMetadata(c.UserContext(), key)
		if err != nil {
			return fromError(c, log, err)
		}
		return OK("Metadata deleted successfully", res)
	})
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
