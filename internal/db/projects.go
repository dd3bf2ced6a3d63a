package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/industry"
)

// Project is a stored build project: a name plus its full engine
// configuration.
type Project struct {
	ID        uuid.UUID
	Name      string
	Config    *industry.ProjectConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveProject inserts a project or updates the stored configuration of
// an existing one with the same name. Returns the project id.
func (d *DB) SaveProject(name string, cfg *industry.ProjectConfig) (uuid.UUID, error) {
	blob, err := json.Marshal(cfg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal config: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	var idStr string
	err = d.sql.QueryRow("SELECT id FROM projects WHERE name = ?", name).Scan(&idStr)
	switch {
	case err == sql.ErrNoRows:
		id := uuid.New()
		_, err = d.sql.Exec(
			"INSERT INTO projects (id, name, config_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			id.String(), name, string(blob), now, now)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert project: %w", err)
		}
		return id, nil
	case err != nil:
		return uuid.Nil, fmt.Errorf("lookup project: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("stored project id: %w", err)
	}
	_, err = d.sql.Exec(
		"UPDATE projects SET config_json = ?, updated_at = ? WHERE id = ?",
		string(blob), now, id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("update project: %w", err)
	}
	return id, nil
}

// GetProject loads a project by name.
func (d *DB) GetProject(name string) (*Project, error) {
	row := d.sql.QueryRow(
		"SELECT id, name, config_json, created_at, updated_at FROM projects WHERE name = ?", name)
	return scanProject(row)
}

// GetProjectByID loads a project by id.
func (d *DB) GetProjectByID(id uuid.UUID) (*Project, error) {
	row := d.sql.QueryRow(
		"SELECT id, name, config_json, created_at, updated_at FROM projects WHERE id = ?", id.String())
	return scanProject(row)
}

// ListProjects returns all projects, newest first, without configs.
func (d *DB) ListProjects() ([]Project, error) {
	rows, err := d.sql.Query(
		"SELECT id, name, created_at, updated_at FROM projects ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var idStr, created, updated string
		if err := rows.Scan(&idStr, &p.Name, &created, &updated); err != nil {
			return nil, err
		}
		p.ID, _ = uuid.Parse(idStr)
		p.CreatedAt, _ = time.Parse(time.RFC3339, created)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and its appraisals.
func (d *DB) DeleteProject(id uuid.UUID) error {
	if _, err := d.sql.Exec("DELETE FROM appraisals WHERE project_id = ?", id.String()); err != nil {
		return fmt.Errorf("delete appraisals: %w", err)
	}
	if _, err := d.sql.Exec("DELETE FROM projects WHERE id = ?", id.String()); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var idStr, blob, created, updated string
	if err := row.Scan(&idStr, &p.Name, &blob, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("stored project id: %w", err)
	}
	p.ID = id
	p.Config = &industry.ProjectConfig{}
	if err := json.Unmarshal([]byte(blob), p.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &p, nil
}
