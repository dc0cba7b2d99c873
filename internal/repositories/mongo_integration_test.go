//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

type MongoRepositorySuite struct {
	suite.Suite

	client *mongo.Client
	db     *mongo.Database
	tasks  *MongoTaskRepository
	users  *MongoUserRepository
}

func TestMongoRepositorySuite(t *testing.T) {
	suite.Run(t, new(MongoRepositorySuite))
}

func (s *MongoRepositorySuite) SetupSuite() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://127.0.0.1:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		s.T().Skipf("skipping integration suite: could not connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		s.T().Skipf("skipping integration suite: mongo not reachable: %v", err)
	}
	s.client = client
}

func (s *MongoRepositorySuite) SetupTest() {
	s.db = s.client.Database("task_manager_test_" + uuid.NewString()[:8])
	s.tasks = NewMongoTaskRepository(s.db)
	s.users = NewMongoUserRepository(s.db)

	ctx := context.Background()
	s.Require().NoError(s.tasks.EnsureIndexes(ctx))
	s.Require().NoError(s.users.EnsureIndexes(ctx))
}

func (s *MongoRepositorySuite) TearDownTest() {
	if s.db != nil {
		s.Require().NoError(s.db.Drop(context.Background()))
	}
}

func (s *MongoRepositorySuite) TearDownSuite() {
	if s.client != nil {
		s.Require().NoError(s.client.Disconnect(context.Background()))
	}
}

func (s *MongoRepositorySuite) TestTaskLifecycle() {
	ctx := context.Background()
	alice := primitive.NewObjectID().Hex()
	bob := primitive.NewObjectID().Hex()
	creator := primitive.NewObjectID().Hex()

	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)

	late := &model.Task{
		Title:      "late",
		Priority:   constants.PriorityHigh,
		Status:     constants.StatusPending,
		DueDate:    &past,
		AssignedTo: []string{alice},
		CreatedBy:  creator,
	}
	done := &model.Task{
		Title:         "done",
		Priority:      constants.PriorityLow,
		Status:        constants.StatusCompleted,
		DueDate:       &past,
		AssignedTo:    []string{alice, bob},
		CreatedBy:     creator,
		TodoChecklist: []model.ChecklistItem{{Text: "x", Completed: true}},
	}
	s.Require().NoError(s.tasks.Create(ctx, late))
	time.Sleep(5 * time.Millisecond)
	s.Require().NoError(s.tasks.Create(ctx, done))

	got, err := s.tasks.FindByID(ctx, done.ID)
	s.Require().NoError(err)
	s.Equal([]string{alice, bob}, got.AssignedTo)
	s.Equal(done.TodoChecklist, got.TodoChecklist)

	n, err := s.tasks.Count(ctx, TaskFilter{AssignedTo: bob})
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.tasks.Count(ctx, TaskFilter{AssignedTo: alice, StatusNot: constants.StatusCompleted, DueBefore: &now})
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	byStatus, err := s.tasks.CountByStatus(ctx, TaskFilter{})
	s.Require().NoError(err)
	s.Equal(map[constants.TaskStatus]int64{constants.StatusPending: 1, constants.StatusCompleted: 1}, byStatus)

	byPriority, err := s.tasks.CountByPriority(ctx, TaskFilter{AssignedTo: alice})
	s.Require().NoError(err)
	s.Equal(map[constants.TaskPriority]int64{constants.PriorityHigh: 1, constants.PriorityLow: 1}, byPriority)

	recent, err := s.tasks.FindRecent(ctx, TaskFilter{}, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal("done", recent[0].Title)

	late.Status = constants.StatusInProgress
	late.AssignedTo = []string{bob}
	s.Require().NoError(s.tasks.Update(ctx, late))

	tasks, err := s.tasks.Find(ctx, TaskFilter{AssignedTo: bob})
	s.Require().NoError(err)
	s.Len(tasks, 2)

	s.Require().NoError(s.tasks.Delete(ctx, late.ID))
	s.ErrorIs(s.tasks.Delete(ctx, late.ID), apperrors.ErrTaskNotFound)

	_, err = s.tasks.FindByID(ctx, "not-an-object-id")
	s.ErrorIs(err, apperrors.ErrTaskNotFound)

	s.NoError(s.tasks.Ping(ctx))
}

func (s *MongoRepositorySuite) TestUsers() {
	ctx := context.Background()

	admin := &model.User{Name: "admin", Email: "admin@example.com", Role: constants.RoleAdmin}
	alice := &model.User{Name: "alice", Email: "alice@example.com", Role: constants.RoleMember}
	s.Require().NoError(s.users.Create(ctx, admin))
	s.Require().NoError(s.users.Create(ctx, alice))
	s.Error(s.users.Create(ctx, &model.User{Name: "dup", Email: "alice@example.com", Role: constants.RoleMember}))

	got, err := s.users.FindByID(ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", got.Name)

	_, err = s.users.FindByID(ctx, primitive.NewObjectID().Hex())
	s.ErrorIs(err, apperrors.ErrUserNotFound)

	users, err := s.users.FindByIDs(ctx, []string{alice.ID, "junk", admin.ID})
	s.Require().NoError(err)
	s.Len(users, 2)

	members, err := s.users.FindByRole(ctx, constants.RoleMember)
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(alice.ID, members[0].ID)
}
