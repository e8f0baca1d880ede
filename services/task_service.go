package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tasknest/backend/database"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/models"
)

// TaskService is plain document CRUD. Who may touch which task is the
// guard's decision, made in the handlers; this layer only scopes listings.
type TaskService struct {
	store database.Store
}

func NewTaskService(store database.Store) *TaskService {
	return &TaskService{store: store}
}

// Create stores a task owned by ownerID. The owner always comes from the
// authenticated principal, never from the request body.
func (s *TaskService) Create(ctx context.Context, ownerID, title, content string, status models.TaskStatus) (*models.Task, error) {
	if status == "" {
		status = models.StatusTodo
	}
	now := time.Now().UnixMilli()
	task := &models.Task{
		Title:     title,
		Content:   content,
		Status:    status,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.store.Insert(ctx, database.TasksCollection, task)
	if err != nil {
		return nil, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	task.ID = oid
	return task, nil
}

// List returns the principal's tasks, or every task for admins,
// newest first.
func (s *TaskService) List(ctx context.Context, principal models.Principal) ([]models.Task, error) {
	filter := bson.M{}
	if !principal.IsAdmin() {
		filter["ownerId"] = principal.ID
	}
	return s.find(ctx, filter)
}

// ListByOwner returns one user's tasks, newest first.
func (s *TaskService) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	return s.find(ctx, bson.M{"ownerId": ownerID})
}

func (s *TaskService) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	var tasks []models.Task
	sort := bson.D{{Key: "createdAt", Value: -1}}
	if err := s.store.Find(ctx, database.TasksCollection, filter, sort, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.store.GetByID(ctx, database.TasksCollection, id, &task); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Update applies a partial patch and bumps updatedAt.
func (s *TaskService) Update(ctx context.Context, id string, patch bson.M) (*models.Task, error) {
	patch["updatedAt"] = time.Now().UnixMilli()
	if err := s.store.Update(ctx, database.TasksCollection, id, patch); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, database.TasksCollection, id); err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}
