package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/meninojhony/modec-challenger/model"
)

// exportPageSize batches the listing while walking all matching contracts.
const exportPageSize = 100

// Export writes every contract matching the filters into an XLSX workbook.
// The export ignores pagination: it walks all pages in the default order.
func (s *ContractService) Export(ctx context.Context, filters model.Filters, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"contract_number",
		"supplier",
		"description",
		"category",
		"responsible",
		"status",
		"value",
		"start_date",
		"end_date",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	pagination := model.DefaultPagination()
	pagination.PageSize = exportPageSize

	row := 2
	for {
		page, err := s.List(ctx, filters, pagination)
		if err != nil {
			return err
		}
		for _, c := range page.Items {
			category := ""
			if c.Category != nil {
				category = c.Category.Name
			}
			cells := []interface{}{
				c.ContractNumber,
				c.Supplier,
				c.Description,
				category,
				c.Responsible,
				c.Status,
				c.Value,
				c.StartDate.String(),
				c.EndDate.String(),
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return fmt.Errorf("build export row: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				return fmt.Errorf("write export row: %w", err)
			}
			row++
		}
		if pagination.Page >= page.Pages {
			break
		}
		pagination.Page++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write export workbook: %w", err)
	}
	return nil
}
