package todo

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tasks is the persistence surface for task records. Listing is always
// scoped to an owner; there is no cross-user listing query on purpose.
type Tasks interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Create(ctx context.Context, record *Task) (*Task, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Task) (*Task, error)
	Update(ctx context.Context, record *Task) (*Task, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, skip, limit int) ([]*Task, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type tasks struct {
	repository.Repository[*Task]
	db *bun.DB
}

var _ Tasks = (*tasks)(nil)

func NewTasksRepository(db *bun.DB) Tasks {
	repo := repository.NewRepository[*Task](db, repository.ModelHandlers[*Task]{
		NewRecord: func() *Task { return &Task{} },
		GetID: func(t *Task) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Task, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &tasks{
		Repository: repo,
		db:         db,
	}
}

func (a *tasks) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *tasks) Create(ctx context.Context, record *Task) (*Task, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *tasks) CreateTx(ctx context.Context, tx bun.IDB, record *Task) (*Task, error) {
	prepareTaskDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *tasks) Update(ctx context.Context, record *Task) (*Task, error) {
	now := time.Now()
	record.UpdatedAt = &now
	return a.Repository.Update(ctx, record)
}

func (a *tasks) ListByOwner(ctx context.Context, owner uuid.UUID, skip, limit int) ([]*Task, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	records := []*Task{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.owner_id = ?", owner).
		Order("created ASC").
		Offset(skip).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *tasks) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareTaskDefaults(record *Task) {
	if record == nil {
		return
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Created.IsZero() {
		record.Created = time.Now()
	}
}
