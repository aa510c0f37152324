package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"book-inventory-backend/imports/services"
	inventoryServices "book-inventory-backend/inventory/services"
	"book-inventory-backend/middleware"
	"book-inventory-backend/utils"
	"book-inventory-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errorReportHeaders = []string{"Linha", "SKU", "Título", "Campo", "Erro"}

type ImportController struct {
	Service *services.ImportService
	// Reports stores error report workbooks; nil disables ?report=true.
	Reports utils.FileStorage
	Cache   *utils.ResponseCache
	// Events receives an IMPORT_COMPLETED notice per batch; nil disables it.
	Events       *websocket.Hub
	MaxFileBytes int64
	Logger       *zap.Logger
}

func fatalImportError(c *fiber.Ctx, status int, message string, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"message":       message,
		"error":         err.Error(),
		"insertedCount": 0,
		"errorsCount":   0,
		"errors":        []services.RowError{},
	})
}

func statusFor(outcome services.Outcome) int {
	switch outcome {
	case services.OutcomeSuccess:
		return fiber.StatusOK
	case services.OutcomePartial:
		return fiber.StatusMultiStatus
	default:
		return fiber.StatusBadRequest
	}
}

// ImportInventoryController accepts a multipart "file" (xlsx or csv) or a JSON
// body {"rows": [...]}.
func (ic *ImportController) ImportInventoryController(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok || user.TenantID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"error":   services.ErrMissingTenant.Error(),
		})
	}
	id := services.Identity{TenantID: user.TenantID, UserID: user.UserID}
	ctx := c.UserContext()

	var (
		report     *services.BatchReport
		err        error
		sourceName = "json"
	)
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		fileHeader, ferr := c.FormFile("file")
		if ferr != nil {
			return fatalImportError(c, fiber.StatusBadRequest, "No file uploaded", ferr)
		}
		if ic.MaxFileBytes > 0 && fileHeader.Size > ic.MaxFileBytes {
			return fatalImportError(c, fiber.StatusBadRequest, "File too large",
				fmt.Errorf("file exceeds %d MB", ic.MaxFileBytes/(1024*1024)))
		}

		file, ferr := fileHeader.Open()
		if ferr != nil {
			return fatalImportError(c, fiber.StatusBadRequest, "Failed to open uploaded file", ferr)
		}
		defer file.Close()

		sourceName = fileHeader.Filename
		report, err = ic.Service.ImportWorkbook(ctx, id, file, fileHeader.Filename)
	} else {
		var req services.ImportRequest
		if perr := c.BodyParser(&req); perr != nil {
			return fatalImportError(c, fiber.StatusBadRequest, "Invalid request body", perr)
		}
		report, err = ic.Service.ImportCandidates(ctx, id, req.Candidates())
	}

	if err != nil {
		if errors.Is(err, services.ErrMissingTenant) {
			return fatalImportError(c, fiber.StatusUnauthorized, "Unauthorized", err)
		}
		return fatalImportError(c, fiber.StatusBadRequest, "Import failed", err)
	}

	if report.InsertedCount > 0 {
		ic.Cache.InvalidateCacheAsync(inventoryServices.CacheResource(user.TenantID))
	}

	ic.Events.NotifyTenant(user.TenantID, websocket.MessageTypeImportCompleted, fiber.Map{
		"source":        sourceName,
		"totalRows":     report.TotalRows,
		"insertedCount": report.InsertedCount,
		"errorsCount":   report.ErrorCount,
	})

	response := fiber.Map{
		"message":       report.Message(),
		"totalRows":     report.TotalRows,
		"insertedCount": report.InsertedCount,
		"errorsCount":   report.ErrorCount,
		"errors":        report.Errors,
	}

	if c.QueryBool("report") && len(report.Errors) > 0 {
		if url, rerr := ic.saveErrorReport(ctx, user.TenantID, sourceName, report); rerr != nil {
			ic.Logger.Error("Failed to save import error report", zap.Error(rerr))
		} else if url != "" {
			response["reportUrl"] = url
		}
	}

	return c.Status(statusFor(report.Outcome())).JSON(response)
}

func (ic *ImportController) saveErrorReport(ctx context.Context, tenantID uuid.UUID, sourceName string, report *services.BatchReport) (string, error) {
	if ic.Reports == nil {
		return "", nil
	}

	rows := make([][]interface{}, 0, len(report.Errors))
	for _, e := range report.Errors {
		var line interface{}
		if e.Line > 0 {
			line = e.Line
		}
		rows = append(rows, []interface{}{line, e.SKU, e.Title, e.Field, e.Message})
	}

	var buf bytes.Buffer
	if err := utils.WriteWorkbook(&buf, "Erros", errorReportHeaders, rows); err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("import_errors_%s_%s_%s.xlsx",
		tenantID, utils.CleanStringForFilename(strings.TrimSuffix(sourceName, filepath.Ext(sourceName))),
		time.Now().UTC().Format("20060102_150405"))
	return ic.Reports.Save(ctx, fileName, &buf, xlsxContentType)
}

// DownloadTemplateController serves an xlsx with the exact header dictionary.
func (ic *ImportController) DownloadTemplateController(c *fiber.Ctx) error {
	var buf bytes.Buffer
	err := utils.WriteWorkbook(&buf, "Inventario", services.TemplateHeaders(), [][]interface{}{services.TemplateExampleRow()})
	if err != nil {
		ic.Logger.Error("Failed to build import template", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to build template",
			"error":   "An internal server error occurred.",
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="modelo_importacao.xlsx"`)
	return c.Send(buf.Bytes())
}
