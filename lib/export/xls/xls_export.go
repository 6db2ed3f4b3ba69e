package xlsexport

import (
	"bytes"
	dbmodels "mailpilot-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportDecisionHistory(list []dbmodels.ApprovalDecision) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var decisionHeaders = []string{"Step", "Outcome", "Actor", "Comments", "Decided at"}

func (i impl) ExportDecisionHistory(list []dbmodels.ApprovalDecision) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close xlsx file")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, decisionHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write xlsx header")
	}
	if len(list) != 0 {
		_, err = writeDecisionData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "failed to write xlsx data rows")
		}
	}
	f.SetSheetName(sheet, "Decision history")
	return f.WriteToBuffer()
}

func writeDecisionData(f *excelize.File, sheet string, list []dbmodels.ApprovalDecision, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(decisionHeaders), len(list)+1); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		// "Step"
		col := 1
		if err := writeColumn(f, sheet, col, row, item.StepIndex); err != nil {
			return row, err
		}

		// "Outcome"
		col++
		if err := writeColumn(f, sheet, col, row, string(item.Outcome)); err != nil {
			return row, err
		}

		// "Actor"
		col++
		if err := writeColumn(f, sheet, col, row, item.ActorID); err != nil {
			return row, err
		}

		// "Comments"
		col++
		if err := writeColumn(f, sheet, col, row, item.Comments); err != nil {
			return row, err
		}

		// "Decided at"
		col++
		if !item.CreatedAt.IsZero() {
			if err := writeColumn(f, sheet, col, row, item.CreatedAt.Format("02.01.2006 15:04")); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}
