package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-planner-api/internal/models"
)

type courseRow struct {
	Code         string         `db:"code"`
	Name         string         `db:"name"`
	Credits      float64        `db:"credits"`
	Corequisites pq.StringArray `db:"corequisites"`
}

type sectionRow struct {
	ID         int64  `db:"id"`
	CourseCode string `db:"course_code"`
	CRN        string `db:"crn"`
	Label      string `db:"label"`
}

type meetingRow struct {
	SectionID  int64         `db:"section_id"`
	DayIndex   int           `db:"day_index"`
	StartMin   sql.NullInt64 `db:"start_min"`
	EndMin     sql.NullInt64 `db:"end_min"`
	TimeText   string        `db:"time_text"`
	Days       string        `db:"days"`
	Location   string        `db:"location"`
	Instructor string        `db:"instructor"`
}

// CatalogRepository persists the course catalog in PostgreSQL.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Name identifies the source in logs and readiness output.
func (r *CatalogRepository) Name() string {
	return "postgres"
}

// Load reads every course with its sections and meetings. Sections and
// meetings keep their stored position order. The version is a digest of the
// loaded content.
func (r *CatalogRepository) Load(ctx context.Context) (map[string]models.Course, string, error) {
	const coursesQuery = `SELECT code, name, credits, corequisites FROM catalog_courses ORDER BY code`
	const sectionsQuery = `SELECT id, course_code, crn, label FROM catalog_sections ORDER BY course_code, position`
	const meetingsQuery = `SELECT section_id, day_index, start_min, end_min, time_text, days, location, instructor FROM catalog_meetings ORDER BY section_id, position`

	var courseRows []courseRow
	if err := r.db.SelectContext(ctx, &courseRows, coursesQuery); err != nil {
		return nil, "", fmt.Errorf("select courses: %w", err)
	}
	var sectionRows []sectionRow
	if err := r.db.SelectContext(ctx, &sectionRows, sectionsQuery); err != nil {
		return nil, "", fmt.Errorf("select sections: %w", err)
	}
	var meetingRows []meetingRow
	if err := r.db.SelectContext(ctx, &meetingRows, meetingsQuery); err != nil {
		return nil, "", fmt.Errorf("select meetings: %w", err)
	}

	meetings := make(map[int64][]models.MeetingSlot, len(sectionRows))
	for _, m := range meetingRows {
		meetings[m.SectionID] = append(meetings[m.SectionID], m.toModel())
	}

	courses := make(map[string]models.Course, len(courseRows))
	for _, c := range courseRows {
		courses[c.Code] = models.Course{
			Name:         c.Name,
			Credits:      models.Credits(c.Credits),
			Corequisites: []string(c.Corequisites),
			Sections:     []models.Section{},
		}
	}
	for _, s := range sectionRows {
		course, ok := courses[s.CourseCode]
		if !ok {
			continue
		}
		course.Sections = append(course.Sections, models.Section{
			Code:     s.CourseCode,
			CRN:      s.CRN,
			Label:    s.Label,
			Schedule: meetings[s.ID],
		})
		courses[s.CourseCode] = course
	}

	version, err := digest(courses)
	if err != nil {
		return nil, "", err
	}
	return courses, version, nil
}

// Replace swaps the stored catalog for courses in a single transaction.
func (r *CatalogRepository) Replace(ctx context.Context, courses map[string]models.Course) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM catalog_courses`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	const insertCourse = `INSERT INTO catalog_courses (code, name, credits, corequisites) VALUES ($1, $2, $3, $4)`
	const insertSection = `INSERT INTO catalog_sections (course_code, position, crn, label) VALUES ($1, $2, $3, $4) RETURNING id`
	const insertMeeting = `INSERT INTO catalog_meetings (section_id, position, day_index, start_min, end_min, time_text, days, location, instructor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	codes := make([]string, 0, len(courses))
	for code := range courses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		course := courses[code]
		coreqs := course.Corequisites
		if coreqs == nil {
			coreqs = []string{}
		}
		if _, err = tx.ExecContext(ctx, insertCourse, code, course.Name, float64(course.Credits), pq.Array(coreqs)); err != nil {
			return fmt.Errorf("insert course %s: %w", code, err)
		}
		for pos, section := range course.Sections {
			var sectionID int64
			if err = tx.GetContext(ctx, &sectionID, insertSection, code, pos, section.CRN, section.Label); err != nil {
				return fmt.Errorf("insert section %s/%s: %w", code, section.Label, err)
			}
			for mpos, m := range section.Schedule {
				if _, err = tx.ExecContext(ctx, insertMeeting, sectionID, mpos, m.DayIndex, nullableInt(m.StartMin), nullableInt(m.EndMin), m.Time, m.Days, m.Where, m.Instructor); err != nil {
					return fmt.Errorf("insert meeting %s/%s#%d: %w", code, section.Label, mpos, err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog replace: %w", err)
	}
	return nil
}

func (m meetingRow) toModel() models.MeetingSlot {
	slot := models.MeetingSlot{
		DayIndex:   m.DayIndex,
		Time:       m.TimeText,
		Days:       m.Days,
		Where:      m.Location,
		Instructor: m.Instructor,
	}
	if m.StartMin.Valid {
		v := int(m.StartMin.Int64)
		slot.StartMin = &v
	}
	if m.EndMin.Valid {
		v := int(m.EndMin.Int64)
		slot.EndMin = &v
	}
	return slot
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func digest(courses map[string]models.Course) (string, error) {
	payload, err := json.Marshal(courses)
	if err != nil {
		return "", fmt.Errorf("digest catalog: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
