package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"filesmanager/internal/http/middleware"
	"filesmanager/internal/model"
	"filesmanager/internal/service"
)

// UploadFile creates a folder, file or image from a JSON body
// {name, kind, parentId, isPublic, data}.
func UploadFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UploadInput
		if err := c.BodyParser(&in); err != nil {
			if errors.Is(err, model.ErrInvalidParent) {
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Parent not found")
			}
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid body")
		}

		node, err := files.Upload(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(node.View())
	}
}

// ListFiles returns one page of the caller's nodes under ?parentId.
// A malformed ?page is the first page.
func ListFiles(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page"))
		if err != nil {
			page = 0
		}

		nodes, err := files.List(c.UserContext(), middleware.UserID(c), c.Query("parentId"), page)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(model.Views(nodes))
	}
}

// GetFile returns an owned node.
func GetFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := nodeID(c)
		if !ok {
			return writeServiceError(c, service.ErrNotFound)
		}

		node, err := files.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(node.View())
	}
}

// SetVisibility publishes or unpublishes an owned node.
func SetVisibility(files service.FileService, public bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := nodeID(c)
		if !ok {
			return writeServiceError(c, service.ErrNotFound)
		}

		node, err := files.SetVisibility(c.UserContext(), middleware.UserID(c), id, public)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(node.View())
	}
}

func nodeID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
