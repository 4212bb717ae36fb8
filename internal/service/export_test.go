package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, time.March, 5, 10, 30, 0, 0, time.UTC)
	updated := time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)

	grievance := model.Grievance{
		ID:             uuid.MustParse("0195f7a2-1111-7abc-8def-000000000001"),
		Title:          `Leaking tap, "again"`,
		Description:    "Second floor washroom",
		Category:       model.CategoryInfrastructure,
		Status:         model.StatusResolved,
		SubmitterEmail: "student@sece.ac.in",
		CreatedAt:      created,
		UpdatedAt:      updated,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []model.Grievance{grievance}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "ID,Title,Description,Category,Status,Student,Submitted On,Updated On", lines[0])
	assert.Equal(t,
		`GR-0195f7a2,"Leaking tap, ""again""",Second floor washroom,Infrastructure,Resolved,student@sece.ac.in,3/5/2026,3/12/2026`,
		lines[1])
}

func TestWriteCSV_MissingTimestamps(t *testing.T) {
	grievance := model.Grievance{
		ID:             uuid.New(),
		Title:          "No timestamps yet",
		Description:    "Pending server acknowledgement",
		Category:       model.CategoryAcademic,
		Status:         model.StatusPending,
		SubmitterEmail: "student@sece.ac.in",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []model.Grievance{grievance}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], ",-,-"))
}

func TestWriteCSV_EmptySetIsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "ID,Title,Description,Category,Status,Student,Submitted On,Updated On\n", buf.String())
}
