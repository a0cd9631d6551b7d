package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// CatalogRepository reads and maintains assemblies and materials.
type CatalogRepository interface {
	GetAssembly(ctx context.Context, code string) (*entity.Assembly, error)
	GetMaterial(ctx context.Context, id string) (*entity.Material, error)
	ListAssemblies(ctx context.Context) ([]entity.Assembly, error)
	ListMaterials(ctx context.Context) ([]entity.Material, error)
	UpsertAssembly(ctx context.Context, a *entity.Assembly) error
	UpsertMaterial(ctx context.Context, m *entity.Material) error
}

type catalogRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewCatalogRepository(db *DB, log *slog.Logger) CatalogRepository {
	if log == nil {
		log = slog.Default()
	}
	return &catalogRepo{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

const assemblyColumns = `code, id, name, phase, labor_minutes, default_material_cost, materials`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssembly(row rowScanner) (*entity.Assembly, error) {
	var (
		a          entity.Assembly
		defaultMat sql.NullFloat64
		materials  []byte
	)
	if err := row.Scan(&a.Code, &a.ID, &a.Name, &a.Phase, &a.LaborMinutes, &defaultMat, &materials); err != nil {
		return nil, err
	}
	if defaultMat.Valid {
		v := defaultMat.Float64
		a.DefaultMaterialCost = &v
	}
	if len(materials) > 0 {
		if err := json.Unmarshal(materials, &a.Materials); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *catalogRepo) GetAssembly(ctx context.Context, code string) (*entity.Assembly, error) {
	row := r.db.SQL.QueryRowContext(ctx,
		r.db.Rebind(`SELECT `+assemblyColumns+` FROM assemblies WHERE code = ?`), code)
	a, err := scanAssembly(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("assembly", code)
	}
	if err != nil {
		r.log.Error("catalog assembly lookup failed", "code", code, "error", err)
		return nil, common.Persistence("get assembly", err)
	}
	return a, nil
}

func (r *catalogRepo) GetMaterial(ctx context.Context, id string) (*entity.Material, error) {
	var m entity.Material
	err := r.db.SQL.QueryRowContext(ctx,
		r.db.Rebind(`SELECT id, name, unit, current_cost FROM materials WHERE id = ?`), id).
		Scan(&m.ID, &m.Name, &m.Unit, &m.CurrentCost)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("material", id)
	}
	if err != nil {
		r.log.Error("catalog material lookup failed", "material_id", id, "error", err)
		return nil, common.Persistence("get material", err)
	}
	return &m, nil
}

func (r *catalogRepo) ListAssemblies(ctx context.Context) ([]entity.Assembly, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT `+assemblyColumns+` FROM assemblies ORDER BY code`)
	if err != nil {
		return nil, common.Persistence("list assemblies", err)
	}
	defer rows.Close()

	var out []entity.Assembly
	for rows.Next() {
		a, err := scanAssembly(rows)
		if err != nil {
			return nil, common.Persistence("scan assembly", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Persistence("list assemblies", err)
	}
	return out, nil
}

func (r *catalogRepo) ListMaterials(ctx context.Context) ([]entity.Material, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT id, name, unit, current_cost FROM materials ORDER BY id`)
	if err != nil {
		return nil, common.Persistence("list materials", err)
	}
	defer rows.Close()

	var out []entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.CurrentCost); err != nil {
			return nil, common.Persistence("scan material", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Persistence("list materials", err)
	}
	return out, nil
}

func (r *catalogRepo) UpsertAssembly(ctx context.Context, a *entity.Assembly) error {
	mats := a.Materials
	if mats == nil {
		mats = []entity.AssemblyMaterial{}
	}
	matJSON, err := json.Marshal(mats)
	if err != nil {
		return common.Persistence("encode assembly materials", err)
	}
	var defaultMat any
	if a.DefaultMaterialCost != nil {
		defaultMat = *a.DefaultMaterialCost
	}
	a.UpdatedAt = r.now()

	_, err = r.db.SQL.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO assemblies (`+assemblyColumns+`, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			phase = excluded.phase,
			labor_minutes = excluded.labor_minutes,
			default_material_cost = excluded.default_material_cost,
			materials = excluded.materials,
			updated_at = excluded.updated_at`),
		a.Code, a.ID, a.Name, a.Phase, a.LaborMinutes, defaultMat, string(matJSON), a.UpdatedAt)
	if err != nil {
		r.log.Error("catalog assembly upsert failed", "code", a.Code, "error", err)
		return common.Persistence("upsert assembly", err)
	}
	r.log.Info("assembly upserted", "code", a.Code, "phase", a.Phase)
	return nil
}

func (r *catalogRepo) UpsertMaterial(ctx context.Context, m *entity.Material) error {
	m.UpdatedAt = r.now()
	_, err := r.db.SQL.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO materials (id, name, unit, current_cost, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			unit = excluded.unit,
			current_cost = excluded.current_cost,
			updated_at = excluded.updated_at`),
		m.ID, m.Name, m.Unit, m.CurrentCost, m.UpdatedAt)
	if err != nil {
		r.log.Error("catalog material upsert failed", "material_id", m.ID, "error", err)
		return common.Persistence("upsert material", err)
	}
	r.log.Info("material upserted", "material_id", m.ID)
	return nil
}
