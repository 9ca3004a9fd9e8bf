package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shotapi/internal/service"
)

// ListActivity godoc
// @Summary      List activity
// @Description  Audit trail of logins and mutations, newest first.
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (default 20, max 100)"
// @Param        offset  query     int  false  "Rows to skip"
// @Success      200     {object}  successEnvelope{data=service.ActivityListResult}
// @Failure      400     {object}  failureEnvelope
// @Failure      401     {object}  failureEnvelope
// @Router       /activity [get]
func ListActivity(svc service.ActivityService, log *zap.Logger) fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		limit, err := queryInt(c, "limit", 20)
		if err != nil {
			return Fail(fiber.StatusBadRequest, MsgInvalidQuery, "limit must be an integer")
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			return Fail(fiber.StatusBadRequest, MsgInvalidQuery, "offset must be an integer")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return fromError(c, log, err)
		}
		return OK("Activity retrieved successfully", res)
	})
}

func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
