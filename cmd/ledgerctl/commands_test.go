package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := parseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, r)

	r, err = parseRole("user")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, r)

	_, err = parseRole("root")
	assert.Error(t, err)
}

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "add-user", "set-role", "snapshot", "summaries", "deletions"} {
		assert.True(t, names[want], want)
	}
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	printSummaries(&buf, nil)
	assert.Equal(t, "No day summaries\n", buf.String())

	buf.Reset()
	printSummaries(&buf, []models.DaySummary{{Date: "2024-03-10", Profit: decimal.NewFromInt(5700)}})
	assert.Equal(t, "2024-03-10\t5700\n", buf.String())
}

func TestPrintDeletions(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	var buf bytes.Buffer
	printDeletions(&buf, []*models.DeletionLog{
		{ClientID: "c1", DeletedBy: "admin@example.com", DeletedAt: time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC),
			Client: &models.Client{FullName: "Иванов", PaymentAmount: "5000"}},
		{ClientID: "c2", DeletedBy: "admin@example.com", DeletedAt: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)},
	}, msk)
	assert.Equal(t,
		"2024-03-10 12:30\tadmin@example.com\tc1\tИванов\t5000\n"+
			"2024-03-10 13:00\tadmin@example.com\tc2\t-\t-\n",
		buf.String())
}
