package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/jackc/pgx/v5"
)

const addTimeLayout = "2006-01-02 15:04:05"

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ModuleRepository stores every module's records as JSONB documents in one
// table, keyed by module name.
type ModuleRepository struct {
	db DBTX
}

func NewModuleRepository(db DBTX) *ModuleRepository {
	return &ModuleRepository{db: db}
}

func (r *ModuleRepository) List(ctx context.Context, module string, query crud.ListQuery) (*models.Page, error) {
	args := []any{module}
	whereParts := []string{"module = $1"}

	for _, key := range sortedKeys(query.Filters) {
		if !fieldNamePattern.MatchString(key) {
			return nil, fmt.Errorf("%w: filter %q", crud.ErrInvalidInput, key)
		}
		args = append(args, key, query.Filters[key])
		whereParts = append(whereParts, fmt.Sprintf("data->>($%d::text) = $%d", len(args)-1, len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM module_records WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	orderBy, err := orderClause(query, &args)
	if err != nil {
		return nil, err
	}
	args = append(args, query.Limit, (query.Page-1)*query.Limit)
	listQuery := fmt.Sprintf(`
		SELECT id, module, data, addtime
		FROM module_records
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Record, 0)
	for rows.Next() {
		var rec models.ModuleRecord
		if err := rows.Scan(&rec.ID, &rec.Module, &rec.Data, &rec.AddTime); err != nil {
			return nil, err
		}
		list = append(list, flatten(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPage := 0
	if query.Limit > 0 {
		totalPage = (total + query.Limit - 1) / query.Limit
	}
	return &models.Page{
		Total:     total,
		PageSize:  query.Limit,
		TotalPage: totalPage,
		CurrPage:  query.Page,
		List:      list,
	}, nil
}

func (r *ModuleRepository) Info(ctx context.Context, module string, id int64) (models.Record, error) {
	query := `
		SELECT id, module, data, addtime
		FROM module_records
		WHERE module = $1 AND id = $2
	`
	var rec models.ModuleRecord
	err := r.db.QueryRow(ctx, query, module, id).Scan(&rec.ID, &rec.Module, &rec.Data, &rec.AddTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, crud.ErrNotFound
		}
		return nil, err
	}
	return flatten(rec), nil
}

func (r *ModuleRepository) Save(ctx context.Context, module string, record models.Record) (int64, error) {
	query := `
		INSERT INTO module_records (module, data)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, module, document(record)).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update merges the given fields into the stored document.
func (r *ModuleRepository) Update(ctx context.Context, module string, record models.Record) error {
	id := crud.RecordID(record)
	if id <= 0 {
		return crud.ErrInvalidInput
	}
	query := `
		UPDATE module_records
		SET data = data || $3, updated_at = NOW()
		WHERE module = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, module, id, document(record))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}

func (r *ModuleRepository) Delete(ctx context.Context, module string, ids []int64) error {
	query := `DELETE FROM module_records WHERE module = $1 AND id = ANY($2)`
	_, err := r.db.Exec(ctx, query, module, ids)
	return err
}

func orderClause(query crud.ListQuery, args *[]any) (string, error) {
	direction := "DESC"
	if query.Order == "asc" {
		direction = "ASC"
	}
	switch field := strings.TrimSpace(query.Sort); field {
	case "", "id":
		return "id " + direction, nil
	case "addtime":
		return fmt.Sprintf("addtime %s, id %s", direction, direction), nil
	default:
		if !fieldNamePattern.MatchString(field) {
			return "", fmt.Errorf("%w: sort %q", crud.ErrInvalidInput, field)
		}
		*args = append(*args, field)
		return fmt.Sprintf("data->>($%d::text) %s, id %s", len(*args), direction, direction), nil
	}
}

func flatten(rec models.ModuleRecord) models.Record {
	out := make(models.Record, len(rec.Data)+2)
	for key, value := range rec.Data {
		out[key] = value
	}
	out["id"] = rec.ID
	out["addtime"] = rec.AddTime.Format(addTimeLayout)
	return out
}

func document(record models.Record) models.Record {
	out := make(models.Record, len(record))
	for key, value := range record {
		if key == "id" || key == "addtime" {
			continue
		}
		out[key] = value
	}
	return out
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
