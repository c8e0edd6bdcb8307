package document

import (
	"encoding/json"

	"broker-crm/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type DocumentController struct {
	Service DocumentService
}

func NewDocumentController(service DocumentService) *DocumentController {
	return &DocumentController{Service: service}
}

// SendBody is the payload plus the delivery fields of a generate-and-send call.
type SendBody struct {
	SendRequest
	Payload json.RawMessage `json:"payload"`
}

// Generate godoc
// @Summary Generate document
// @Description Generate a pre-approval letter or loan estimate. mode=download returns the PDF as an attachment, mode=bytes returns it base64 encoded.
// @Tags documents
// @Accept json
// @Produce application/pdf
// @Produce json
// @Param kind path string true "pre-approval or loan-estimate"
// @Param mode query string false "download (default) or bytes"
// @Param archive query bool false "Store the PDF on the payload's contact"
// @Param payload body PreApprovalPayload true "Document payload"
// @Success 200 {object} BytesResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/documents/{kind} [post]
func (c *DocumentController) Generate(ctx *fiber.Ctx) error {
	payload, err := NewPayload(Kind(ctx.Params("kind")))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err := ctx.BodyParser(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	mode := Mode(ctx.Query("mode", string(ModeDownload)))
	doc, err := c.Service.Generate(ctx.UserContext(), payload, Options{
		Mode:    mode,
		Archive: ctx.QueryBool("archive", false),
	})
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if mode == ModeBytes {
		return ctx.JSON(BytesResponse{Document: doc, PDFBase64: doc.Base64()})
	}
	ctx.Attachment(doc.FileName)
	ctx.Set(fiber.HeaderContentType, doc.ContentType)
	return ctx.Send(doc.Bytes)
}

// GenerateAndSend godoc
// @Summary Generate and email document
// @Description Generate the document, then email it as a PDF attachment. Nothing is sent if generation fails.
// @Tags documents
// @Accept json
// @Produce json
// @Param kind path string true "pre-approval or loan-estimate"
// @Param request body SendBody true "Delivery fields and document payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/documents/{kind}/send [post]
func (c *DocumentController) GenerateAndSend(ctx *fiber.Ctx) error {
	payload, err := NewPayload(Kind(ctx.Params("kind")))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	var body SendBody
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(body.Payload) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payload is required"})
	}
	if err := json.Unmarshal(body.Payload, payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	doc, email, err := c.Service.GenerateAndSend(ctx.UserContext(), payload, body.SendRequest)
	if err != nil && email != nil {
		// the attempt was recorded as failed
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    err.Error(),
			"document": doc,
			"email":    email,
		})
	}
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"document": doc,
		"email":    email,
	})
}
