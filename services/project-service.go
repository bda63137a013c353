package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tagirkamaev/to-do-v2/logging"
	"github.com/tagirkamaev/to-do-v2/models"
)

type ProjectService struct {
	projectsCollection *mongo.Collection
	tasksCollection    *mongo.Collection
}

func NewProjectService(db *mongo.Database) *ProjectService {
	return &ProjectService{
		projectsCollection: db.Collection("projects"),
		tasksCollection:    db.Collection("tasks"),
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, owner primitive.ObjectID, title string) (*models.Project, error) {
	now := time.Now()
	project := &models.Project{
		ID:        primitive.NewObjectID(),
		Title:     strings.TrimSpace(title),
		Owner:     owner,
		Tasks:     []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.projectsCollection.InsertOne(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %v", err)
	}
	project.ID = result.InsertedID.(primitive.ObjectID)
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, owner, projectID primitive.ObjectID, title string) (*models.PopulatedProject, error) {
	update := bson.M{"$set": bson.M{"title": strings.TrimSpace(title), "updatedAt": time.Now()}}
	result, err := s.projectsCollection.UpdateOne(ctx, bson.M{"_id": projectID, "owner": owner}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetProject(ctx, owner, projectID)
}

// DeleteProject removes the project and cascades to its tasks. The cascade
// deletes by direct query on the task side (project == id), not by walking
// the membership list, so tasks with stale membership are still cleaned up.
func (s *ProjectService) DeleteProject(ctx context.Context, owner, projectID primitive.ObjectID) error {
	err := s.projectsCollection.FindOne(ctx, bson.M{"_id": projectID, "owner": owner}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch project: %v", err)
	}

	deleted, err := s.tasksCollection.DeleteMany(ctx, bson.M{"project": projectID, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to delete project tasks: %v", err)
	}

	if _, err := s.projectsCollection.DeleteOne(ctx, bson.M{"_id": projectID, "owner": owner}); err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted with %d cascaded tasks", projectID.Hex(), deleted.DeletedCount)
	return nil
}

func (s *ProjectService) GetProject(ctx context.Context, owner, projectID primitive.ObjectID) (*models.PopulatedProject, error) {
	var project models.Project
	err := s.projectsCollection.FindOne(ctx, bson.M{"_id": projectID, "owner": owner}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}
	return s.populate(ctx, owner, project)
}

// ListProjects returns one page of the owner's projects, each populated
// with its member task summaries.
func (s *ProjectService) ListProjects(ctx context.Context, owner primitive.ObjectID, sort Sort, page Pagination) (*models.ProjectPage, error) {
	return s.listProjects(ctx, owner, bson.M{"owner": owner}, sort, page)
}

// SearchProjects matches the term as a case-insensitive substring of the
// project title.
func (s *ProjectService) SearchProjects(ctx context.Context, owner primitive.ObjectID, term string, page Pagination) (*models.ProjectPage, error) {
	query := bson.M{"owner": owner, "title": searchRegex(term)}
	return s.listProjects(ctx, owner, query, Sort{}, page)
}

func (s *ProjectService) listProjects(ctx context.Context, owner primitive.ObjectID, query bson.M, sort Sort, page Pagination) (*models.ProjectPage, error) {
	page = page.Normalize()

	total, err := s.projectsCollection.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %v", err)
	}

	cursor, err := s.projectsCollection.Find(ctx, query, findOptions(sort, page))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}

	populated := []models.PopulatedProject{}
	for _, project := range projects {
		p, err := s.populate(ctx, owner, project)
		if err != nil {
			return nil, err
		}
		populated = append(populated, *p)
	}

	return &models.ProjectPage{
		Projects: populated,
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
		Pages:    page.Pages(total),
	}, nil
}

// AttachTask puts the task into the project's membership list and points the
// task back at the project. A task already sitting in another project is
// pulled from it first.
func (s *ProjectService) AttachTask(ctx context.Context, owner, projectID, taskID primitive.ObjectID) (*models.PopulatedProject, error) {
	if err := s.ownedProjectExists(ctx, owner, projectID); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID, "owner": owner}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	pullOld, setTask := attachWrites(task.Project, projectID)
	if pullOld {
		if _, err := s.projectsCollection.UpdateOne(ctx,
			bson.M{"_id": *task.Project},
			bson.M{"$pull": bson.M{"tasks": taskID}}); err != nil {
			logging.Logger.Errorf("Event ID: TASK_MEMBERSHIP_DIVERGENCE, Description: Failed to pull task %s from project %s: %v", taskID.Hex(), task.Project.Hex(), err)
			return nil, fmt.Errorf("failed to remove task from previous project: %v", err)
		}
	}

	// Issued unconditionally: re-attaching a task the project already
	// lists is a no-op, and re-attaching one it lost repairs the
	// membership list.
	if _, err := s.projectsCollection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$addToSet": bson.M{"tasks": taskID}}); err != nil {
		return nil, fmt.Errorf("failed to add task to project: %v", err)
	}

	if setTask {
		update := bson.M{"$set": bson.M{"project": projectID, "updatedAt": time.Now()}}
		if _, err := s.tasksCollection.UpdateOne(ctx, bson.M{"_id": taskID, "owner": owner}, update); err != nil {
			logging.Logger.Errorf("Event ID: TASK_MEMBERSHIP_DIVERGENCE, Description: Task %s added to project %s but back-reference update failed: %v", taskID.Hex(), projectID.Hex(), err)
			return nil, fmt.Errorf("failed to update task project reference: %v", err)
		}
	}

	return s.GetProject(ctx, owner, projectID)
}

// DetachTask pulls the task from the project's membership list and clears
// the task's back-reference when it points at this project.
func (s *ProjectService) DetachTask(ctx context.Context, owner, projectID, taskID primitive.ObjectID) (*models.PopulatedProject, error) {
	if err := s.ownedProjectExists(ctx, owner, projectID); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID, "owner": owner}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	if _, err := s.projectsCollection.UpdateOne(ctx,
		bson.M{"_id": projectID},
		bson.M{"$pull": bson.M{"tasks": taskID}}); err != nil {
		return nil, fmt.Errorf("failed to remove task from project: %v", err)
	}

	if task.Project != nil && *task.Project == projectID {
		update := bson.M{
			"$unset": bson.M{"project": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		}
		if _, err := s.tasksCollection.UpdateOne(ctx, bson.M{"_id": taskID, "owner": owner}, update); err != nil {
			logging.Logger.Errorf("Event ID: TASK_MEMBERSHIP_DIVERGENCE, Description: Task %s pulled from project %s but back-reference clear failed: %v", taskID.Hex(), projectID.Hex(), err)
			return nil, fmt.Errorf("failed to clear task project reference: %v", err)
		}
	}

	return s.GetProject(ctx, owner, projectID)
}

// attachWrites reports which task-side writes an explicit attach needs.
// The project-side $addToSet is always issued regardless, so it doubles as
// a repair path when the membership list has diverged from the task's
// back-reference.
func attachWrites(current *primitive.ObjectID, target primitive.ObjectID) (pullOld, setTask bool) {
	if current == nil {
		return false, true
	}
	if *current == target {
		return false, false
	}
	return true, true
}

func (s *ProjectService) ownedProjectExists(ctx context.Context, owner, projectID primitive.ObjectID) error {
	err := s.projectsCollection.FindOne(ctx, bson.M{"_id": projectID, "owner": owner}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch project: %v", err)
	}
	return nil
}

// populate joins the membership list with task summaries. The task query is
// owner-scoped again, so stale membership entries and foreign tasks never
// leak into the response.
func (s *ProjectService) populate(ctx context.Context, owner primitive.ObjectID, project models.Project) (*models.PopulatedProject, error) {
	summaries := []models.TaskSummary{}

	if len(project.Tasks) > 0 {
		projection := options.Find().SetProjection(bson.M{
			"title":       1,
			"description": 1,
			"completed":   1,
			"createdAt":   1,
		})
		cursor, err := s.tasksCollection.Find(ctx,
			bson.M{"_id": bson.M{"$in": project.Tasks}, "owner": owner},
			projection)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve project tasks: %v", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &summaries); err != nil {
			return nil, fmt.Errorf("failed to decode project tasks: %v", err)
		}
	}

	return &models.PopulatedProject{
		ID:        project.ID,
		Title:     project.Title,
		Owner:     project.Owner,
		Tasks:     summaries,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}, nil
}
