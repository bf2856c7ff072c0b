package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
)

const (
	exportSheet    = "Users"
	exportPageSize = 100
	exportMaxRows  = 50000
)

var exportHeaders = []any{
	"ID", "Email", "Full Name", "Initials", "Role", "Program", "Other Program", "Status", "Created",
}

func (s *userService) ExportUsers(ctx context.Context, filters repositories.UserFilters) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	filters.Limit = exportPageSize
	filters.Offset = 0
	row := 2

	for row-2 < exportMaxRows {
		users, total, err := s.repo.User().List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list users for export: %w", err)
		}

		for _, u := range users {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := exportRow(u)
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}

		filters.Offset += len(users)
		if len(users) < filters.Limit || int64(filters.Offset) >= total {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Users exported", "rows", row-2)
	return buf.Bytes(), nil
}

func exportRow(u *models.User) []any {
	status := ""
	if u.Status != nil {
		status = *u.Status
	}
	return []any{
		u.ID,
		u.Email,
		u.DisplayName(),
		utils.GetUserInitials(u.DisplayName()),
		string(u.Role),
		u.Program,
		u.OtherProgram,
		status,
		utils.FormatTime(u.CreatedAt),
	}
}
