package controller

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"

	"dealerdesk/models"
	"dealerdesk/utils"
)

// importHeader is the canonical CSV layout. Only the first three columns
// are mandatory.
var importHeader = []string{"first_name", "last_name", "phone", "email", "address", "city", "state", "zip", "notes"}

// ImportRow is one parsed CSV line.
type ImportRow struct {
	Line      int    `json:"line"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Notes     string `json:"notes"`
}

// RowIssue is a per-row diagnostic. Warnings do not block import; errors do.
type RowIssue struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// parseImportCSV reads the upload into rows. Column order follows the
// header line, so reordered files still map correctly; unknown columns are
// ignored. Line numbers are 1-based counting the header as line 1.
func parseImportCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must have a header row and at least one data row")
	}

	colIndex := make(map[string]int)
	for i, col := range records[0] {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range importHeader[:3] {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := colIndex[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for n, record := range records[1:] {
		rows = append(rows, ImportRow{
			Line:      n + 2,
			FirstName: field(record, "first_name"),
			LastName:  field(record, "last_name"),
			Phone:     field(record, "phone"),
			Email:     field(record, "email"),
			Address:   field(record, "address"),
			City:      field(record, "city"),
			State:     field(record, "state"),
			Zip:       field(record, "zip"),
			Notes:     field(record, "notes"),
		})
	}
	return rows, nil
}

// validateImportRows checks every row independently. A row is valid iff the
// three required fields are present and the phone reduces to 10 digits or
// 11 digits starting with 1. A normalized phone repeating an earlier row
// produces a warning, not an error: the row is still importable, the import
// step resolves the overlap against the store.
func validateImportRows(rows []ImportRow) (valid []ImportRow, errors []RowIssue, warnings []RowIssue) {
	seenPhones := make(map[string]int)

	for _, row := range rows {
		rowValid := true

		if row.FirstName == "" {
			errors = append(errors, RowIssue{Line: row.Line, Field: "first_name", Message: "first name is required"})
			rowValid = false
		}
		if row.LastName == "" {
			errors = append(errors, RowIssue{Line: row.Line, Field: "last_name", Message: "last name is required"})
			rowValid = false
		}

		switch {
		case row.Phone == "":
			errors = append(errors, RowIssue{Line: row.Line, Field: "phone", Message: "phone is required"})
			rowValid = false
		case !utils.IsValidPhone(row.Phone):
			errors = append(errors, RowIssue{Line: row.Line, Field: "phone", Message: utils.ErrInvalidPhone.Error()})
			rowValid = false
		default:
			normalized, _ := utils.NormalizePhone(row.Phone)
			if firstLine, seen := seenPhones[normalized]; seen {
				warnings = append(warnings, RowIssue{
					Line:    row.Line,
					Field:   "phone",
					Message: fmt.Sprintf("duplicate of line %d within this file", firstLine),
				})
			} else {
				seenPhones[normalized] = row.Line
			}
		}

		if row.Email != "" {
			if err := checkmail.ValidateFormat(row.Email); err != nil {
				warnings = append(warnings, RowIssue{Line: row.Line, Field: "email", Message: "email looks invalid"})
			}
		}

		if rowValid {
			valid = append(valid, row)
		}
	}
	return valid, errors, warnings
}

func (lc *LeadController) openImportFile(c *fiber.Ctx) (io.ReadCloser, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file upload error: %w", err)
	}
	if file.Size > 5<<20 {
		return nil, fmt.Errorf("file too large (max 5MB)")
	}
	return file.Open()
}

// ValidateImport runs the validation pass without writing anything, so the
// UI can show per-row diagnostics before the operator commits.
func (lc *LeadController) ValidateImport(c *fiber.Ctx) error {
	src, err := lc.openImportFile(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid upload", err)
	}
	defer src.Close()

	rows, err := parseImportCSV(src)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse CSV file", err)
	}

	valid, rowErrors, rowWarnings := validateImportRows(rows)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"total_rows": len(rows),
		"valid_rows": len(valid),
		"errors":     rowErrors,
		"warnings":   rowWarnings,
	}))
}

// ImportLeads validates and inserts the uploaded CSV. Rows are inserted one
// at a time: the unique phone index turns a collision with a stored lead
// into a skip (duplicate_count), any other insert failure increments
// error_count, and neither aborts the batch. Imported leads arrive
// unassigned, sourced csv_upload, in the first-ordered stage, with no tags.
func (lc *LeadController) ImportLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	src, err := lc.openImportFile(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid upload", err)
	}
	defer src.Close()

	rows, err := parseImportCSV(src)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse CSV file", err)
	}

	valid, rowErrors, rowWarnings := validateImportRows(rows)

	stage, err := lc.firstStage()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "No pipeline stages configured", err)
	}

	var successCount, duplicateCount, errorCount int

	for _, row := range valid {
		phone, _ := utils.NormalizePhone(row.Phone)

		lead := models.Lead{
			UserID:          user.ID,
			FirstName:       row.FirstName,
			LastName:        row.LastName,
			Phone:           phone,
			Email:           strings.ToLower(row.Email),
			Address:         row.Address,
			City:            row.City,
			State:           row.State,
			Zip:             row.Zip,
			Notes:           row.Notes,
			Status:          "new",
			LeadSource:      "csv_upload",
			Tags:            []string{},
			PipelineStageID: stage.ID,
		}

		if err := lc.DB.Create(&lead).Error; err != nil {
			if isUniqueViolation(err) {
				duplicateCount++
			} else {
				lc.Logger.Printf("Import: failed to insert row %d: %v", row.Line, err)
				errorCount++
			}
			continue
		}
		successCount++
		lc.Hub.Broadcast("leads", "insert", lead.ID)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"total_rows":      len(rows),
		"success_count":   successCount,
		"duplicate_count": duplicateCount,
		"error_count":     errorCount,
		"invalid_count":   len(rows) - len(valid),
		"row_errors":      rowErrors,
		"warnings":        rowWarnings,
	}))
}

// ExportLeads exports all leads as CSV in the import column layout.
func (lc *LeadController) ExportLeads(c *fiber.Ctx) error {
	var leads []models.Lead
	if err := lc.DB.Order("created_at ASC").Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=leads_export_"+time.Now().Format("20060102")+".csv")

	writer := csv.NewWriter(c)
	defer writer.Flush()

	if err := writer.Write(importHeader); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
	}

	for _, lead := range leads {
		record := []string{
			lead.FirstName,
			lead.LastName,
			lead.Phone,
			lead.Email,
			lead.Address,
			lead.City,
			lead.State,
			lead.Zip,
			lead.Notes,
		}
		if err := writer.Write(record); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate CSV", err)
		}
	}

	return nil
}
