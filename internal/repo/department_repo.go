package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"

	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/pkg/dbutil"
	appErr "github.com/voxdesk/voxdesk/internal/pkg/errors"
)

type DepartmentRepo struct {
	db *sql.DB
}

func NewDepartmentRepo(db *sql.DB) *DepartmentRepo {
	return &DepartmentRepo{db: db}
}

var departmentFields = []string{
	"id", "tenant_id", "name", "description", "intent",
	"duration_threshold", "sentiment_threshold", "is_active", "ctime", "mtime",
}

func (r *DepartmentRepo) Create(ctx context.Context, dept *model.Department) error {
	data := map[string]interface{}{
		"id":                  dept.ID,
		"tenant_id":           dept.TenantID,
		"name":                dept.Name,
		"description":         dept.Description,
		"intent":              pq.Array(dept.Intent),
		"duration_threshold":  dept.DurationThreshold,
		"sentiment_threshold": dept.SentimentThreshold,
		"is_active":           dept.IsActive,
		"ctime":               dept.Ctime,
		"mtime":               dept.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("departments", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DepartmentRepo) Get(ctx context.Context, id string) (*model.Department, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("departments", where, departmentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	dept, err := scanDepartment(row)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dept, nil
}

func (r *DepartmentRepo) List(ctx context.Context, tenantID string) ([]model.Department, error) {
	where := map[string]interface{}{"tenant_id": tenantID, "_orderby": "ctime asc"}
	sqlStr, args, err := builder.BuildSelect("departments", where, departmentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	depts := make([]model.Department, 0)
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		depts = append(depts, *dept)
	}
	return depts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDepartment(row rowScanner) (*model.Department, error) {
	var dept model.Department
	var intent pq.StringArray
	err := row.Scan(
		&dept.ID, &dept.TenantID, &dept.Name, &dept.Description, &intent,
		&dept.DurationThreshold, &dept.SentimentThreshold, &dept.IsActive, &dept.Ctime, &dept.Mtime,
	)
	if err != nil {
		return nil, err
	}
	dept.Intent = intent
	return &dept, nil
}
