package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/scheduler"
)

func newCatalogMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func intPtr(v int) *int { return &v }

func TestCatalogRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT code, name, credits, corequisites FROM catalog_courses ORDER BY code")).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "credits", "corequisites"}).
			AddRow("CS201", "Intro to Computing", 3.0, "{CS201R}").
			AddRow("MATH101", "Calculus", 3.0, "{}"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_code, crn, label FROM catalog_sections ORDER BY course_code, position")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_code", "crn", "label"}).
			AddRow(1, "CS201", "10001", "A1").
			AddRow(2, "CS201", "10002", "X").
			AddRow(3, "MATH101", "20001", "0").
			AddRow(4, "ORPHAN", "0", "0"))
	mock.ExpectQuery("SELECT section_id, day_index, start_min, end_min").
		WillReturnRows(sqlmock.NewRows([]string{"section_id", "day_index", "start_min", "end_min", "time_text", "days", "location", "instructor"}).
			AddRow(1, 0, 520, 570, "08:40 am - 09:30 am", "M", "FENS G077", "Ada").
			AddRow(1, 2, 520, 570, "08:40 am - 09:30 am", "W", "FENS G077", "Ada").
			AddRow(3, -1, nil, nil, "TBA", "TBA", "", ""))

	courses, version, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, courses, 2)
	cs := courses["CS201"]
	assert.Equal(t, []string{"CS201R"}, cs.Corequisites)
	require.Len(t, cs.Sections, 2)
	require.Len(t, cs.Sections[0].Schedule, 2)
	assert.Equal(t, 2, cs.Sections[0].Schedule[1].DayIndex)
	assert.Equal(t, 520, *cs.Sections[0].Schedule[0].StartMin)
	assert.Empty(t, cs.Sections[1].Schedule)

	math := courses["MATH101"].Sections[0].Schedule[0]
	assert.Nil(t, math.StartMin)
	assert.False(t, math.HasFixedTime())

	assert.Len(t, version, 64)
}

func TestCatalogRepositoryLoadPropagatesErrors(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM catalog_courses").WillReturnError(errors.New("connection reset"))

	_, _, err := NewCatalogRepository(db).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select courses")
}

func TestCatalogRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	courses := map[string]models.Course{
		"CS201": {
			Name:    "Intro to Computing",
			Credits: 3,
			Sections: []models.Section{{
				CRN:   "10001",
				Label: "A1",
				Schedule: []models.MeetingSlot{
					{DayIndex: 0, StartMin: intPtr(520), EndMin: intPtr(570), Days: "M"},
					{DayIndex: models.NoMeetingDay},
				},
			}},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM catalog_courses").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO catalog_courses").
		WithArgs("CS201", "Intro to Computing", 3.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO catalog_sections .* RETURNING id").
		WithArgs("CS201", 0, "10001", "A1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO catalog_meetings").
		WithArgs(int64(7), 0, 0, sqlmock.AnyArg(), sqlmock.AnyArg(), "", "M", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO catalog_meetings").
		WithArgs(int64(7), 1, -1, sqlmock.AnyArg(), sqlmock.AnyArg(), "", "", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Replace(context.Background(), courses))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryReplaceRollsBack(t *testing.T) {
	db, mock, cleanup := newCatalogMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM catalog_courses").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := NewCatalogRepository(db).Replace(context.Background(), map[string]models.Course{})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grouped_courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"CS201":{"name":"Intro","credits":"3.000","sections":[
		{"crn":"10001","section":"A1","schedule":[{"day_index":0,"start_min":520,"end_min":570}]}
	]}}`), 0o644))

	repo := NewCatalogFileRepository(path)
	courses, version, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, version, 64)
	assert.Equal(t, models.Credits(3), courses["CS201"].Credits)
	assert.Equal(t, "file:"+path, repo.Name())

	_, again, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, version, again)

	require.NoError(t, repo.Save(courses, false))
	reloaded, changed, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, version, changed)
	assert.Equal(t, courses["CS201"].Sections[0].Label, reloaded["CS201"].Sections[0].Label)
}

func TestCatalogFileRepositoryLoadsMalformedSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grouped_courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"CS201":{"name":"Intro","credits":3,"sections":[
		{"crn":"10001","section":"A1","schedule":[{"day_index":0,"start_min":520,"end_min":570}]},
		{"crn":"10002","section":"A2","schedule":[{"day_index":1,"start_min":"TBA","end_min":""}]}
	]}}`), 0o644))

	courses, _, err := NewCatalogFileRepository(path).Load(context.Background())
	require.NoError(t, err)
	sections := courses["CS201"].Sections
	require.Len(t, sections, 2)

	assert.False(t, scheduler.EncodeSlots(sections[0].Schedule).IsZero())
	malformed := sections[1].Schedule[0]
	assert.Equal(t, 1, malformed.DayIndex)
	assert.Nil(t, malformed.StartMin)
	assert.True(t, scheduler.EncodeSlots(sections[1].Schedule).IsZero())
}

func TestCatalogFileRepositoryErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := NewCatalogFileRepository(filepath.Join(dir, "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1,2]`), 0o644))
	_, _, err = NewCatalogFileRepository(bad).Load(context.Background())
	assert.Error(t, err)

	null := filepath.Join(dir, "null.json")
	require.NoError(t, os.WriteFile(null, []byte(`null`), 0o644))
	_, _, err = NewCatalogFileRepository(null).Load(context.Background())
	assert.Error(t, err)
}
