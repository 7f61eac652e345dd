package repository

import (
	"database/sql"
	"fmt"

	"github.com/kraftmortgages/calcserv/internal/models"
)

// ScenarioStore persists saved calculator scenarios.
type ScenarioStore interface {
	Save(scenario *models.Scenario) error
	FindByID(id int64) (*models.Scenario, error)
	ListRecent(limit int) ([]models.Scenario, error)
}

// ErrNotFound is returned when a scenario does not exist.
var ErrNotFound = fmt.Errorf("scenario not found")

// Repository provides database operations over the scenario store.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a scenario and fills in its generated ID and timestamp.
func (r *Repository) Save(scenario *models.Scenario) error {
	query := `
		INSERT INTO calc.scenarios (calculator, input, result, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, scenario.Calculator, []byte(scenario.Input), []byte(scenario.Result)).
		Scan(&scenario.ID, &scenario.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// FindByID retrieves a scenario by ID.
func (r *Repository) FindByID(id int64) (*models.Scenario, error) {
	scenario := &models.Scenario{}
	query := `
		SELECT id, calculator, input, result, created_at
		FROM calc.scenarios
		WHERE id = $1`
	var input, result []byte
	err := r.db.QueryRow(query, id).
		Scan(&scenario.ID, &scenario.Calculator, &input, &result, &scenario.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scenario: %w", err)
	}
	scenario.Input = input
	scenario.Result = result
	return scenario, nil
}

// ListRecent retrieves the most recently saved scenarios, newest first.
func (r *Repository) ListRecent(limit int) ([]models.Scenario, error) {
	query := `
		SELECT id, calculator, input, result, created_at
		FROM calc.scenarios
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []models.Scenario
	for rows.Next() {
		var s models.Scenario
		var input, result []byte
		if err := rows.Scan(&s.ID, &s.Calculator, &input, &result, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		s.Input = input
		s.Result = result
		scenarios = append(scenarios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenarios: %w", err)
	}
	return scenarios, nil
}
