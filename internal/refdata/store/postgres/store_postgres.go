// Package postgres serves reference data from PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"casebridge/internal/refdata/models"
	"casebridge/internal/refdata/store/memory"
	"casebridge/pkg/platform/sentinel"
)

//go:embed schema.sql
var Schema string

// Tables lists every reference-data table, in import order.
var Tables = []string{
	"common_values",
	"providers",
	"proceeding_types",
	"scope_limitations",
	"award_types",
	"prior_authority_types",
	"courts",
	"outcome_results",
	"stage_ends",
}

// PostgresStore implements the mapping reference-data port.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply reference data schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CommonValues answers ErrNotFound for an unknown list and an empty page for
// an unknown code within a known list.
func (s *PostgresStore) CommonValues(ctx context.Context, listCode, code string) (*models.CommonValues, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, description FROM common_values WHERE list_code = $1 AND code = $2`, listCode, code)
	if err != nil {
		return nil, fmt.Errorf("query common values: %w", err)
	}
	values, err := collectLookups(rows)
	if err != nil {
		return nil, fmt.Errorf("scan common values: %w", err)
	}
	if len(values) > 0 {
		return &models.CommonValues{Content: values}, nil
	}

	var known bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM common_values WHERE list_code = $1)`, listCode).Scan(&known)
	if err != nil {
		return nil, fmt.Errorf("query common value list: %w", err)
	}
	if !known {
		return nil, fmt.Errorf("common value list %s: %w", listCode, sentinel.ErrNotFound)
	}
	return &models.CommonValues{Content: []models.LookupValue{}}, nil
}

func (s *PostgresStore) ProceedingType(ctx context.Context, code string) (*models.ProceedingTypeDetail, error) {
	var (
		p    models.ProceedingTypeDetail
		cost string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT code, name, description, matter_type, lar_scope, cost_limitation::text,
		       stage_end_required, outcome_results_required
		FROM proceeding_types WHERE code = $1`, code).
		Scan(&p.Code, &p.Name, &p.Description, &p.MatterType, &p.LarScope, &cost,
			&p.StageEndRequired, &p.OutcomeResultsRequired)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("proceeding type %s: %w", code, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query proceeding type: %w", err)
	}
	if p.CostLimitation, err = decimal.NewFromString(cost); err != nil {
		return nil, fmt.Errorf("proceeding type %s cost limitation: %w", code, err)
	}
	return &p, nil
}

func (s *PostgresStore) Provider(ctx context.Context, firmID int) (*models.ProviderDetail, error) {
	var (
		p       models.ProviderDetail
		offices []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT id, name, offices FROM providers WHERE id = $1`, firmID).
		Scan(&p.ID, &p.Name, &offices)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("provider %d: %w", firmID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query provider: %w", err)
	}
	if err := json.Unmarshal(offices, &p.Offices); err != nil {
		return nil, fmt.Errorf("decode provider %d offices: %w", firmID, err)
	}
	return &p, nil
}

func (s *PostgresStore) ScopeLimitationDetails(ctx context.Context, c models.ScopeLimitationCriteria) ([]models.ScopeLimitationDetail, error) {
	var emergency *bool
	if c.Emergency != nil {
		v := *c.Emergency
		emergency = &v
	}
	rows, err := s.pool.Query(ctx, `
		SELECT category_of_law, matter_type, proceeding_code, level_of_service, scope_limitation,
		       emergency, cost_limitation::text, emergency_cost_limitation::text
		FROM scope_limitations
		WHERE category_of_law = $1 AND matter_type = $2 AND proceeding_code = $3
		  AND level_of_service = $4 AND scope_limitation = $5
		  AND ($6::boolean IS NULL OR emergency = $6)
		ORDER BY emergency`,
		c.CategoryOfLaw, c.MatterType, c.ProceedingCode, c.LevelOfService, c.ScopeLimitation, emergency)
	if err != nil {
		return nil, fmt.Errorf("query scope limitations: %w", err)
	}
	defer rows.Close()

	out := []models.ScopeLimitationDetail{}
	for rows.Next() {
		var (
			d                    models.ScopeLimitationDetail
			cost, emergencyLimit string
		)
		if err := rows.Scan(&d.CategoryOfLaw, &d.MatterType, &d.ProceedingCode, &d.LevelOfService,
			&d.ScopeLimitation, &d.Emergency, &cost, &emergencyLimit); err != nil {
			return nil, fmt.Errorf("scan scope limitation: %w", err)
		}
		if d.CostLimitation, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("scope limitation cost limitation: %w", err)
		}
		if d.EmergencyCostLimitation, err = decimal.NewFromString(emergencyLimit); err != nil {
			return nil, fmt.Errorf("scope limitation emergency cost limitation: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scope limitations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AwardTypes(ctx context.Context) ([]models.AwardType, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, description, award_type FROM award_types ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query award types: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AwardType, error) {
		var (
			a        models.AwardType
			category string
		)
		err := row.Scan(&a.Code, &a.Description, &category)
		a.Category = models.AwardCategory(category)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan award types: %w", err)
	}
	if out == nil {
		out = []models.AwardType{}
	}
	return out, nil
}

func (s *PostgresStore) PriorAuthorityType(ctx context.Context, code string) (*models.PriorAuthorityTypeDetail, error) {
	var (
		p       models.PriorAuthorityTypeDetail
		details []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT code, description, value_required, details FROM prior_authority_types WHERE code = $1`, code).
		Scan(&p.Code, &p.Description, &p.ValueRequired, &details)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("prior authority type %s: %w", code, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query prior authority type: %w", err)
	}
	if err := json.Unmarshal(details, &p.Details); err != nil {
		return nil, fmt.Errorf("decode prior authority type %s details: %w", code, err)
	}
	return &p, nil
}

func (s *PostgresStore) Courts(ctx context.Context, code string) ([]models.LookupValue, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, description FROM courts WHERE code = $1 ORDER BY seq`, code)
	if err != nil {
		return nil, fmt.Errorf("query courts: %w", err)
	}
	out, err := collectLookups(rows)
	if err != nil {
		return nil, fmt.Errorf("scan courts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) OutcomeResults(ctx context.Context, proceedingCode, resultCode string) ([]models.LookupValue, error) {
	return s.outcomeLookups(ctx, "outcome_results", proceedingCode, resultCode)
}

func (s *PostgresStore) StageEnds(ctx context.Context, proceedingCode, stageEndCode string) ([]models.LookupValue, error) {
	return s.outcomeLookups(ctx, "stage_ends", proceedingCode, stageEndCode)
}

// table is one of the two fixed outcome tables, never caller input.
func (s *PostgresStore) outcomeLookups(ctx context.Context, table, proceedingCode, code string) ([]models.LookupValue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, description FROM `+table+` WHERE proceeding_code = $1 AND code = $2`, proceedingCode, code)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	out, err := collectLookups(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return out, nil
}

func collectLookups(rows pgx.Rows) ([]models.LookupValue, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LookupValue, error) {
		var v models.LookupValue
		err := row.Scan(&v.Code, &v.Description)
		return v, err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.LookupValue{}
	}
	return out, nil
}

// Import replaces the contents of every table with seed in one transaction.
func (s *PostgresStore) Import(ctx context.Context, seed *memory.Seed) error {
	if seed == nil {
		return errors.New("seed is required")
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, table := range Tables {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return importSeed(ctx, tx, seed)
	})
}

func importSeed(ctx context.Context, tx pgx.Tx, seed *memory.Seed) error {
	batch := &pgx.Batch{}
	for list, values := range seed.CommonValues {
		for _, v := range values {
			batch.Queue(`INSERT INTO common_values (list_code, code, description) VALUES ($1, $2, $3)`,
				list, v.Code, v.Description)
		}
	}
	for _, p := range seed.Providers {
		offices, err := json.Marshal(p.Offices)
		if err != nil {
			return fmt.Errorf("encode provider %d offices: %w", p.ID, err)
		}
		batch.Queue(`INSERT INTO providers (id, name, offices) VALUES ($1, $2, $3)`, p.ID, p.Name, offices)
	}
	for _, p := range seed.ProceedingTypes {
		batch.Queue(`
			INSERT INTO proceeding_types (code, name, description, matter_type, lar_scope, cost_limitation,
			                              stage_end_required, outcome_results_required)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8)`,
			p.Code, p.Name, p.Description, p.MatterType, p.LarScope, p.CostLimitation.String(),
			p.StageEndRequired, p.OutcomeResultsRequired)
	}
	for _, d := range seed.ScopeLimitations {
		batch.Queue(`
			INSERT INTO scope_limitations (category_of_law, matter_type, proceeding_code, level_of_service,
			                               scope_limitation, emergency, cost_limitation, emergency_cost_limitation)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric)`,
			d.CategoryOfLaw, d.MatterType, d.ProceedingCode, d.LevelOfService, d.ScopeLimitation,
			d.Emergency, d.CostLimitation.String(), d.EmergencyCostLimitation.String())
	}
	for _, a := range seed.AwardTypes {
		batch.Queue(`INSERT INTO award_types (code, description, award_type) VALUES ($1, $2, $3)`,
			a.Code, a.Description, string(a.Category))
	}
	for _, p := range seed.PriorAuthorityTypes {
		details, err := json.Marshal(p.Details)
		if err != nil {
			return fmt.Errorf("encode prior authority type %s details: %w", p.Code, err)
		}
		batch.Queue(`INSERT INTO prior_authority_types (code, description, value_required, details) VALUES ($1, $2, $3, $4)`,
			p.Code, p.Description, p.ValueRequired, details)
	}
	for _, c := range seed.Courts {
		batch.Queue(`INSERT INTO courts (code, description) VALUES ($1, $2)`, c.Code, c.Description)
	}
	for _, o := range seed.OutcomeResults {
		batch.Queue(`INSERT INTO outcome_results (proceeding_code, code, description) VALUES ($1, $2, $3)`,
			o.ProceedingCode, o.Code, o.Description)
	}
	for _, o := range seed.StageEnds {
		batch.Queue(`INSERT INTO stage_ends (proceeding_code, code, description) VALUES ($1, $2, $3)`,
			o.ProceedingCode, o.Code, o.Description)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert seed rows: %w", err)
	}
	return nil
}
