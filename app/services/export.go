package services

import (
	"fmt"
	"io"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/xuri/excelize/v2"
)

const (
	ProfitHistorySheet    = "История"
	ProfitHistoryFilename = "История_прибыли.xlsx"
	ClientsSheet          = "Клиенты"
)

var (
	profitHistoryHeader = []interface{}{"Дата", "Было в долге", "Вернули", "Осталось"}
	clientsHeader       = []interface{}{"ФИО", "Телефон", "Поручитель", "Сумма", "Статус", "Комментарий", "Создан", "Оплачен", "Способ оплаты", "Получатель"}
)

// ExportProfitHistory writes the profit snapshots as a one-sheet workbook.
func ExportProfitHistory(w io.Writer, snapshots []models.ProfitSnapshot) error {
	rows := make([][]interface{}, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, []interface{}{
			s.Date,
			s.Debt.InexactFloat64(),
			s.Profit.InexactFloat64(),
			s.Remaining().InexactFloat64(),
		})
	}
	return writeSheet(w, ProfitHistorySheet, profitHistoryHeader, rows)
}

// ExportClients writes one row per record, timestamps rendered in loc.
func ExportClients(w io.Writer, records []*models.Client, loc *time.Location) error {
	rows := make([][]interface{}, 0, len(records))
	for _, c := range records {
		paidAt := ""
		if c.PaidAt != nil {
			paidAt = c.PaidAt.In(loc).Format("2006-01-02 15:04")
		}
		rows = append(rows, []interface{}{
			c.FullName,
			c.Phone,
			c.GuarantorPhone,
			ParseAmount(c.PaymentAmount).InexactFloat64(),
			c.Status.Label(),
			c.Comment,
			c.CreatedAt.In(loc).Format("2006-01-02 15:04"),
			paidAt,
			string(c.PaymentMethod),
			c.TransferTo,
		})
	}
	return writeSheet(w, ClientsSheet, clientsHeader, rows)
}

func writeSheet(w io.Writer, sheet string, header []interface{}, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
