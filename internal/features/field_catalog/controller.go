package field_catalog

import (
	"broker-crm/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type FieldController struct {
	Service FieldService
}

func NewFieldController(service FieldService) *FieldController {
	return &FieldController{Service: service}
}

// Create godoc
// @Summary Create field definition
// @Description Add a merge field to the catalog
// @Tags fields
// @Accept json
// @Produce json
// @Param field body FieldDefinition true "Field Definition"
// @Success 201 {object} FieldDefinition
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/fields [post]
func (c *FieldController) Create(ctx *fiber.Ctx) error {
	var field FieldDefinition
	if err := ctx.BodyParser(&field); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.Service.CreateField(ctx.UserContext(), &field); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(field)
}

// List godoc
// @Summary List field definitions
// @Description List the merge field catalog ordered by section and display name
// @Tags fields
// @Produce json
// @Success 200 {array} FieldDefinition
// @Failure 500 {object} map[string]interface{}
// @Router /api/fields [get]
func (c *FieldController) List(ctx *fiber.Ctx) error {
	fields, err := c.Service.ListFields(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fields)
}

// ListGrouped godoc
// @Summary List field definitions by section
// @Description Catalog grouped by section, as shown by merge-tag pickers
// @Tags fields
// @Produce json
// @Success 200 {array} FieldGroup
// @Failure 500 {object} map[string]interface{}
// @Router /api/fields/grouped [get]
func (c *FieldController) ListGrouped(ctx *fiber.Ctx) error {
	groups, err := c.Service.ListGrouped(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(groups)
}

// SampleContext godoc
// @Summary Sample render context
// @Description Field name to sample value map used for template previews
// @Tags fields
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]interface{}
// @Router /api/fields/sample-context [get]
func (c *FieldController) SampleContext(ctx *fiber.Ctx) error {
	values, err := c.Service.SampleContext(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(values)
}

// Get godoc
// @Summary Get field definition
// @Tags fields
// @Produce json
// @Param name path string true "Field name"
// @Success 200 {object} FieldDefinition
// @Failure 404 {object} map[string]interface{}
// @Router /api/fields/{name} [get]
func (c *FieldController) Get(ctx *fiber.Ctx) error {
	field, err := c.Service.GetField(ctx.UserContext(), ctx.Params("name"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(field)
}

// Update godoc
// @Summary Update field definition
// @Description Overwrite a catalog entry; the field name is taken from the path
// @Tags fields
// @Accept json
// @Produce json
// @Param name path string true "Field name"
// @Param field body FieldDefinition true "Field Definition"
// @Success 200 {object} FieldDefinition
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/fields/{name} [put]
func (c *FieldController) Update(ctx *fiber.Ctx) error {
	var field FieldDefinition
	if err := ctx.BodyParser(&field); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	field.FieldName = ctx.Params("name")

	if err := c.Service.UpdateField(ctx.UserContext(), &field); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.JSON(field)
}

// Delete godoc
// @Summary Delete field definition
// @Tags fields
// @Param name path string true "Field name"
// @Success 204 {object} nil
// @Failure 404 {object} map[string]interface{}
// @Router /api/fields/{name} [delete]
func (c *FieldController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteField(ctx.UserContext(), ctx.Params("name")); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
