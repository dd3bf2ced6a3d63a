package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/industry"
)

// Appraisal is one stored engine run for a project.
type Appraisal struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	CreatedAt  time.Time
	Totals     industry.Totals
	Incomplete bool
	Result     *industry.EngineResult
}

// SaveAppraisal stores an engine result for a project. The full result
// goes in as JSON; totals are denormalized for cheap listing.
func (d *DB) SaveAppraisal(projectID uuid.UUID, res *industry.EngineResult) (uuid.UUID, error) {
	blob, err := json.Marshal(res)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal result: %w", err)
	}

	incomplete := 0
	for _, n := range res.Nodes {
		if n.IncompleteData {
			incomplete = 1
			break
		}
	}

	id := uuid.New()
	_, err = d.sql.Exec(`
		INSERT INTO appraisals (id, project_id, created_at, material_cost, job_cost, total_cost, incomplete, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), projectID.String(), time.Now().UTC().Format(time.RFC3339),
		res.Totals.MaterialCost, res.Totals.JobCost, res.Totals.TotalCost,
		incomplete, string(blob))
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert appraisal: %w", err)
	}
	return id, nil
}

// GetAppraisal loads a stored appraisal with its full result.
func (d *DB) GetAppraisal(id uuid.UUID) (*Appraisal, error) {
	row := d.sql.QueryRow(`
		SELECT id, project_id, created_at, material_cost, job_cost, total_cost, incomplete, result_json
		FROM appraisals WHERE id = ?`, id.String())

	var a Appraisal
	var idStr, projStr, created, blob string
	var incomplete int
	err := row.Scan(&idStr, &projStr, &created,
		&a.Totals.MaterialCost, &a.Totals.JobCost, &a.Totals.TotalCost,
		&incomplete, &blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan appraisal: %w", err)
	}
	a.ID, _ = uuid.Parse(idStr)
	a.ProjectID, _ = uuid.Parse(projStr)
	a.CreatedAt, _ = time.Parse(time.RFC3339, created)
	a.Incomplete = incomplete != 0
	a.Result = &industry.EngineResult{}
	if err := json.Unmarshal([]byte(blob), a.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &a, nil
}

// ListAppraisals returns a project's appraisal history, newest first,
// without the result payloads.
func (d *DB) ListAppraisals(projectID uuid.UUID, limit int) ([]Appraisal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(`
		SELECT id, project_id, created_at, material_cost, job_cost, total_cost, incomplete
		FROM appraisals WHERE project_id = ?
		ORDER BY created_at DESC LIMIT ?`, projectID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list appraisals: %w", err)
	}
	defer rows.Close()

	var appraisals []Appraisal
	for rows.Next() {
		var a Appraisal
		var idStr, projStr, created string
		var incomplete int
		err := rows.Scan(&idStr, &projStr, &created,
			&a.Totals.MaterialCost, &a.Totals.JobCost, &a.Totals.TotalCost, &incomplete)
		if err != nil {
			return nil, err
		}
		a.ID, _ = uuid.Parse(idStr)
		a.ProjectID, _ = uuid.Parse(projStr)
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		a.Incomplete = incomplete != 0
		appraisals = append(appraisals, a)
	}
	return appraisals, rows.Err()
}
