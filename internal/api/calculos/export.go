package calculos

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"pagamento-api/internal/api/respond"
	domain "pagamento-api/internal/domain/calculos"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheet     = "Calculos"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

var exportHeader = []interface{}{"Data", "DP", "CFSD", "NEP", "DEM", "Resultado"}

// ExportCalculos streams the user's history as an xlsx workbook.
func (h *Handler) ExportCalculos(c *gin.Context) {
	var p userParam
	if !respond.BindURI(c, &p) {
		return
	}

	calcs, err := h.store.ListByUser(c.Request.Context(), p.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", p.UserID).Msg("export calculations failed")
		respond.Error(c, err, "Erro ao exportar cálculos", h.production)
		return
	}

	f, err := buildWorkbook(calcs)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", p.UserID).Msg("build workbook failed")
		respond.Error(c, err, "Erro ao exportar cálculos", h.production)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("calculos-%s.xlsx", unsafeFilename.ReplaceAllString(p.UserID, "_"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Str("user_id", p.UserID).Msg("write workbook failed")
	}
}

func buildWorkbook(calcs []domain.Calculation) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, calc := range calcs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		row := []interface{}{
			calc.CreatedAt.Format("2006-01-02 15:04:05"),
			calc.DP, calc.CFSD, calc.NEP, calc.DEM, calc.Resultado,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}
