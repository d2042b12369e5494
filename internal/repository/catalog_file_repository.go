package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// CatalogFileRepository reads the grouped catalog JSON produced by ingestion.
type CatalogFileRepository struct {
	path string
}

// NewCatalogFileRepository constructs the repository for the file at path.
func NewCatalogFileRepository(path string) *CatalogFileRepository {
	return &CatalogFileRepository{path: path}
}

// Name identifies the source in logs and readiness output.
func (r *CatalogFileRepository) Name() string {
	return "file:" + r.path
}

// Load decodes the catalog file. The version is the SHA-256 of its bytes.
func (r *CatalogFileRepository) Load(ctx context.Context) (map[string]models.Course, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	payload, err := os.ReadFile(r.path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog %s: %w", r.path, err)
	}

	var courses map[string]models.Course
	if err := json.Unmarshal(payload, &courses); err != nil {
		return nil, "", fmt.Errorf("decode catalog %s: %w", r.path, err)
	}
	if courses == nil {
		return nil, "", fmt.Errorf("decode catalog %s: expected an object keyed by course code", r.path)
	}

	sum := sha256.Sum256(payload)
	return courses, hex.EncodeToString(sum[:]), nil
}

// Save writes courses in the same format Load reads.
func (r *CatalogFileRepository) Save(courses map[string]models.Course, indent bool) error {
	var (
		payload []byte
		err     error
	)
	if indent {
		payload, err = json.MarshalIndent(courses, "", "    ")
	} else {
		payload, err = json.Marshal(courses)
	}
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(r.path, payload, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", r.path, err)
	}
	return nil
}
