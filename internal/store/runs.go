package store

import (
	"database/sql"
	"fmt"
	"time"

	"contracthierarchy/internal/model"
)

// 固定宽度，保证按字符串排序即按时间排序
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CreateRun 记录一次运行的开始
func (s *Store) CreateRun(id, filename, sheet, sortKey string, startedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, filename, sheet, sort_key, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, filename, sheet, sortKey, string(model.RunStatusRunning), startedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun 以运行报告更新记录
func (s *Store) CompleteRun(report *model.RunReport) error {
	res, err := s.db.Exec(`
		UPDATE runs SET
			sheet = ?,
			total_records = ?,
			total_groups = ?,
			parents = ?,
			children = ?,
			child_parents = ?,
			sub_children = ?,
			edges = ?,
			ambiguities = ?,
			warnings = ?,
			status = ?,
			completed_at = ?
		WHERE id = ?
	`,
		report.SheetName,
		report.TotalRecords,
		report.TotalGroups,
		report.LabelCounts[model.LabelParent],
		report.LabelCounts[model.LabelChild],
		report.LabelCounts[model.LabelChildParent],
		report.LabelCounts[model.LabelSubChild],
		report.Edges,
		len(report.Ambiguities),
		len(report.Warnings),
		string(model.RunStatusCompleted),
		report.CompletedAt.UTC().Format(timeLayout),
		report.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return expectOneRow(res, report.RunID)
}

// FailRun 标记运行失败
func (s *Store) FailRun(id, message string, completedAt time.Time) error {
	res, err := s.db.Exec(`
		UPDATE runs SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`, string(model.RunStatusFailed), message, completedAt.UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return expectOneRow(res, id)
}

// ListRuns 按开始时间倒序列出最近的运行；limit <= 0 表示不限
func (s *Store) ListRuns(limit int) ([]*model.RunRecord, error) {
	query := `
		SELECT id, filename, sheet, sort_key, total_records, total_groups,
			parents, children, child_parents, sub_children, edges, ambiguities, warnings,
			status, error_message, started_at, completed_at
		FROM runs
		ORDER BY started_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []*model.RunRecord
	for rows.Next() {
		var (
			r         model.RunRecord
			status    string
			started   string
			completed sql.NullString
		)
		if err := rows.Scan(
			&r.ID, &r.Filename, &r.SheetName, &r.SortKey, &r.TotalRecords, &r.TotalGroups,
			&r.Parents, &r.Children, &r.ChildParents, &r.SubChildren, &r.Edges, &r.Ambiguities, &r.Warnings,
			&status, &r.ErrorMessage, &started, &completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Status = model.RunStatus(status)
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, started, err)
		}
		if completed.Valid && completed.String != "" {
			t, err := time.Parse(timeLayout, completed.String)
			if err != nil {
				return nil, fmt.Errorf("run %s: bad completed_at %q: %w", r.ID, completed.String, err)
			}
			r.CompletedAt = &t
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}
