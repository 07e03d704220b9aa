package services

import (
	"bytes"
	"testing"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportProfitHistory(t *testing.T) {
	var buf bytes.Buffer
	err := ExportProfitHistory(&buf, []models.ProfitSnapshot{
		{Date: "2024-03-10", Debt: decimal.NewFromInt(5000), Profit: decimal.NewFromInt(3000)},
		{Date: "2024-03-09", Debt: decimal.NewFromInt(200), Profit: decimal.Zero},
	})
	require.NoError(t, err)

	rows := readRows(t, &buf, ProfitHistorySheet)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Дата", "Было в долге", "Вернули", "Осталось"}, rows[0])
	assert.Equal(t, []string{"2024-03-10", "5000", "3000", "2000"}, rows[1])
	assert.Equal(t, []string{"2024-03-09", "200", "0", "200"}, rows[2])
}

func TestExportClients(t *testing.T) {
	c := paidClient(at(2024, 3, 10, 9, 30), at(2024, 3, 10, 12, 0), "1500")
	c.FullName = "Иванов"
	c.Phone = "87001234567"

	var buf bytes.Buffer
	require.NoError(t, ExportClients(&buf, []*models.Client{c}, msk))

	rows := readRows(t, &buf, ClientsSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "ФИО", rows[0][0])
	assert.Equal(t, "Иванов", rows[1][0])
	assert.Equal(t, "87001234567", rows[1][1])
	assert.Equal(t, "1500", rows[1][3])
	assert.Equal(t, "Оплачено", rows[1][4])
	assert.Equal(t, "2024-03-10 09:30", rows[1][6])
	assert.Equal(t, "2024-03-10 12:00", rows[1][7])
}
