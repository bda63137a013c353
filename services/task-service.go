package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tagirkamaev/to-do-v2/logging"
	"github.com/tagirkamaev/to-do-v2/models"
)

type TaskService struct {
	tasksCollection    *mongo.Collection
	projectsCollection *mongo.Collection
}

func NewTaskService(db *mongo.Database) *TaskService {
	return &TaskService{
		tasksCollection:    db.Collection("tasks"),
		projectsCollection: db.Collection("projects"),
	}
}

// CreateTaskInput carries the validated fields for a new task. Priority and
// Status fall back to their defaults when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Status      models.TaskStatus
	DueDate     *time.Time
	ProjectID   *primitive.ObjectID
}

// UpdateTaskInput carries a partial update. Nil pointers leave the field
// untouched. ProjectSet distinguishes "projectId absent from the request"
// from an explicit reassignment or detach (ProjectID nil).
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Completed    *bool
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
	ProjectSet   bool
	ProjectID    *primitive.ObjectID
}

// CreateTask inserts the task and, when a project is given, registers the
// task in that project's membership list. The project must exist and belong
// to the owner. The membership write happens after the insert; if it fails
// the divergence is logged and reported, not rolled back.
func (s *TaskService) CreateTask(ctx context.Context, owner primitive.ObjectID, input CreateTaskInput) (*models.Task, error) {
	if input.ProjectID != nil {
		if err := s.ownedProject(ctx, owner, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if input.Status == "" {
		input.Status = models.StatusTodo
	}

	now := time.Now()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		Project:     input.ProjectID,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := s.tasksCollection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)

	if input.ProjectID != nil {
		if err := s.addMembership(ctx, *input.ProjectID, task.ID); err != nil {
			logging.Logger.Errorf("Event ID: TASK_MEMBERSHIP_DIVERGENCE, Description: Task %s created but project %s membership update failed: %v", task.ID.Hex(), input.ProjectID.Hex(), err)
			return nil, fmt.Errorf("failed to update project with task ID: %v", err)
		}
	}

	return task, nil
}

// UpdateTask applies a partial update and keeps project membership
// consistent on reassignment: the task id is pulled from the old project's
// list and added to the new one, then the task document itself is written
// last. Reassigning to the project the task already belongs to performs no
// membership writes.
func (s *TaskService) UpdateTask(ctx context.Context, owner, taskID primitive.ObjectID, input UpdateTaskInput) (*models.Task, error) {
	current, err := s.GetTask(ctx, owner, taskID)
	if err != nil {
		return nil, err
	}

	if input.ProjectSet && input.ProjectID != nil {
		if err := s.ownedProject(ctx, owner, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	if input.ProjectSet {
		pullOld, pushNew := membershipChange(current.Project, input.ProjectID)
		if pullOld {
			if err := s.removeMembership(ctx, *current.Project, taskID); err != nil {
				logging.Logger.Errorf("Event ID: TASK_MEMBERSHIP_DIVERGENCE, Description: Failed to pull task %s from project %s: %v", taskID.Hex(), current.Project.Hex(), err)
				return nil, fmt.Errorf("failed to remove task from previous project: %v", err)
			}
		}
		if pushNew {
			if err := s.addMembership(ctx, *input.ProjectID, taskID); err != nil {
				logging.Logger.Errorf("Event ID: TASK_MEMBERSHIP_DIVERGENCE, Description: Failed to add task %s to project %s: %v", taskID.Hex(), input.ProjectID.Hex(), err)
				return nil, fmt.Errorf("failed to add task to project: %v", err)
			}
		}
	}

	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}

	if input.Title != nil {
		set["title"] = *input.Title
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Completed != nil {
		set["completed"] = *input.Completed
	}
	if input.Priority != nil {
		set["priority"] = *input.Priority
	}
	if input.Status != nil {
		set["status"] = *input.Status
	}
	if input.DueDate != nil {
		set["dueDate"] = *input.DueDate
	} else if input.ClearDueDate {
		unset["dueDate"] = ""
	}
	if input.ProjectSet {
		if input.ProjectID != nil {
			set["project"] = *input.ProjectID
		} else {
			unset["project"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	if _, err := s.tasksCollection.UpdateOne(ctx, bson.M{"_id": taskID, "owner": owner}, update); err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	return s.GetTask(ctx, owner, taskID)
}

// DeleteTask removes the task and pulls it from its project's membership
// list first, so the list never points at a missing document.
func (s *TaskService) DeleteTask(ctx context.Context, owner, taskID primitive.ObjectID) error {
	task, err := s.GetTask(ctx, owner, taskID)
	if err != nil {
		return err
	}

	if task.Project != nil {
		if err := s.removeMembership(ctx, *task.Project, taskID); err != nil {
			logging.Logger.Errorf("Event ID: TASK_MEMBERSHIP_DIVERGENCE, Description: Failed to pull task %s from project %s before delete: %v", taskID.Hex(), task.Project.Hex(), err)
			return fmt.Errorf("failed to remove task from project: %v", err)
		}
	}

	result, err := s.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, owner, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID, "owner": owner}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}
	return &task, nil
}

// ListTasks returns one page of the owner's tasks matching the filter,
// along with the total match count taken before pagination.
func (s *TaskService) ListTasks(ctx context.Context, owner primitive.ObjectID, filter TaskFilter, sort Sort, page Pagination) (*models.TaskPage, error) {
	page = page.Normalize()
	query := filter.Query(owner)

	total, err := s.tasksCollection.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %v", err)
	}

	cursor, err := s.tasksCollection.Find(ctx, query, findOptions(sort, page))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	return &models.TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
		Pages: page.Pages(total),
	}, nil
}

// SearchTasks matches the term as a case-insensitive substring of title,
// description, status or priority.
func (s *TaskService) SearchTasks(ctx context.Context, owner primitive.ObjectID, term string, page Pagination) (*models.TaskPage, error) {
	page = page.Normalize()
	rx := searchRegex(term)
	query := bson.M{
		"owner": owner,
		"$or": bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"status": rx},
			bson.M{"priority": rx},
		},
	}

	total, err := s.tasksCollection.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %v", err)
	}

	cursor, err := s.tasksCollection.Find(ctx, query, findOptions(Sort{}, page))
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	return &models.TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
		Pages: page.Pages(total),
	}, nil
}

// membershipChange reports which membership writes a reassignment needs.
// Moving a task onto the project it already belongs to needs none.
func membershipChange(oldID, newID *primitive.ObjectID) (pullOld, pushNew bool) {
	switch {
	case oldID == nil && newID == nil:
		return false, false
	case oldID == nil:
		return false, true
	case newID == nil:
		return true, false
	case *oldID == *newID:
		return false, false
	default:
		return true, true
	}
}

// ownedProject verifies the project exists and belongs to the owner. Any
// mismatch is reported as ErrNotFound.
func (s *TaskService) ownedProject(ctx context.Context, owner, projectID primitive.ObjectID) error {
	err := s.projectsCollection.FindOne(ctx, bson.M{"_id": projectID, "owner": owner}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch project: %v", err)
	}
	return nil
}

func (s *TaskService) addMembership(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	_, err := s.projectsCollection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$addToSet": bson.M{"tasks": taskID}})
	return err
}

func (s *TaskService) removeMembership(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	_, err := s.projectsCollection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$pull": bson.M{"tasks": taskID}})
	return err
}
