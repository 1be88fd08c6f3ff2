package repo

import (
	"context"
	"fmt"
	"time"

	dom "kanban/internal/domain"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const neo4jReturnTask = `RETURN t.id AS id, t.title AS title, t.detail AS detail, t.assignedTo AS assignedTo,
	t.column AS column, t.status AS status, t.createdAt AS createdAt, t.updatedAt AS updatedAt`

// Neo4jTaskRepo stores tasks as (:Task) nodes.
type Neo4jTaskRepo struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jTaskRepo(driver neo4j.DriverWithContext, database string) *Neo4jTaskRepo {
	return &Neo4jTaskRepo{driver: driver, database: database}
}

// EnsureSchema creates the id uniqueness constraint if it is missing.
func (r *Neo4jTaskRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "CREATE CONSTRAINT task_id_unique IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE", nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("neo4j schema: %w", err)
	}
	return nil
}

func (r *Neo4jTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	return r.writeOne(ctx,
		"CREATE (t:Task {id: $id, title: $title, detail: $detail, assignedTo: $assignedTo, "+
			"column: $column, status: $status, createdAt: timestamp(), updatedAt: timestamp()}) "+neo4jReturnTask,
		map[string]any{
			"id":         t.ID,
			"title":      t.Title,
			"detail":     t.Detail,
			"assignedTo": t.AssignedTo,
			"column":     string(t.Column),
			"status":     string(t.Status),
		},
	)
}

func (r *Neo4jTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (t:Task {id: $id}) "+neo4jReturnTask, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return singleTask(ctx, res)
	})
	if err != nil {
		return dom.Task{}, err
	}
	return out.(dom.Task), nil
}

func (r *Neo4jTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (t:Task) "+neo4jReturnTask+" ORDER BY createdAt ASC, id ASC", nil)
		if err != nil {
			return nil, err
		}
		list := []dom.Task{}
		for res.Next(ctx) {
			t, err := taskFromRecord(res.Record())
			if err != nil {
				return nil, err
			}
			list = append(list, t)
		}
		return list, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return out.([]dom.Task), nil
}

func (r *Neo4jTaskRepo) UpdateFields(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	return r.writeOne(ctx,
		"MATCH (t:Task {id: $id}) "+
			"SET t.title = coalesce($title, t.title), t.detail = coalesce($detail, t.detail), "+
			"t.assignedTo = coalesce($assignedTo, t.assignedTo), t.updatedAt = timestamp() "+neo4jReturnTask,
		map[string]any{
			"id":         id,
			"title":      optional(patch.Title),
			"detail":     optional(patch.Detail),
			"assignedTo": optional(patch.AssignedTo),
		},
	)
}

func (r *Neo4jTaskRepo) Move(ctx context.Context, id string, column dom.Column, status dom.Status) (dom.Task, error) {
	return r.writeOne(ctx,
		"MATCH (t:Task {id: $id}) SET t.column = $column, t.status = $status, t.updatedAt = timestamp() "+neo4jReturnTask,
		map[string]any{"id": id, "column": string(column), "status": string(status)},
	)
}

func (r *Neo4jTaskRepo) Delete(ctx context.Context, id string) (dom.Task, error) {
	return r.writeOne(ctx,
		"MATCH (t:Task {id: $id}) "+
			"WITH t, t.id AS id, t.title AS title, t.detail AS detail, t.assignedTo AS assignedTo, "+
			"t.column AS column, t.status AS status, t.createdAt AS createdAt, t.updatedAt AS updatedAt "+
			"DETACH DELETE t "+
			"RETURN id, title, detail, assignedTo, column, status, createdAt, updatedAt",
		map[string]any{"id": id},
	)
}

func (r *Neo4jTaskRepo) write(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, work)
}

func (r *Neo4jTaskRepo) writeOne(ctx context.Context, cypher string, params map[string]any) (dom.Task, error) {
	out, err := r.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return singleTask(ctx, res)
	})
	if err != nil {
		return dom.Task{}, err
	}
	return out.(dom.Task), nil
}

func singleTask(ctx context.Context, res neo4j.ResultWithContext) (dom.Task, error) {
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return dom.Task{}, err
		}
		return dom.Task{}, ErrNotFound
	}
	return taskFromRecord(res.Record())
}

func taskFromRecord(rec *neo4j.Record) (dom.Task, error) {
	var t dom.Task
	var col, status string
	for key, dst := range map[string]*string{
		"id":         &t.ID,
		"title":      &t.Title,
		"detail":     &t.Detail,
		"assignedTo": &t.AssignedTo,
		"column":     &col,
		"status":     &status,
	} {
		v, ok := rec.Get(key)
		if !ok {
			return dom.Task{}, fmt.Errorf("neo4j record: missing %q", key)
		}
		s, ok := v.(string)
		if !ok && v != nil {
			return dom.Task{}, fmt.Errorf("neo4j record: %q is %T, want string", key, v)
		}
		*dst = s
	}
	t.Column = dom.Column(col)
	t.Status = dom.Status(status)
	t.CreatedAt = millis(rec, "createdAt")
	t.UpdatedAt = millis(rec, "updatedAt")
	return t, nil
}

func millis(rec *neo4j.Record, key string) time.Time {
	v, _ := rec.Get(key)
	if ms, ok := v.(int64); ok {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

func optional(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
