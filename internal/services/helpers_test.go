package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/integrations"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/repository"
	"github.com/thewebvalue/task-management-api/internal/testfixtures"
	"gorm.io/gorm"
)

var testTokenConfig = auth.TokenConfig{
	AccessSecret:  "test-access-secret",
	RefreshSecret: "test-refresh-secret",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    7 * 24 * time.Hour,
}

// recordingSink keeps every side effect it is given.
type recordingSink struct {
	records map[string][]SideEffect
}

func newRecordingSink() *recordingSink {
	return &recordingSink{records: map[string][]SideEffect{}}
}

func (r *recordingSink) Record(_ context.Context, operation string, _ uint64, effects []SideEffect) {
	r.records[operation] = append(r.records[operation], effects...)
}

// serviceSuite wires every service against an in-memory database and fake adapters.
type serviceSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	store    *repository.GormStore
	clock    *testfixtures.Clock
	google   *testfixtures.FakeCalendar
	msft     *testfixtures.FakeCalendar
	notifier *testfixtures.FakeNotifier
	sink     *recordingSink

	tasks  *TaskService
	admins *AdminService
	auth   *AuthService
	tokens *auth.TokenService

	admin *models.User
	alice *models.User
	bob   *models.User
}

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testfixtures.OpenSQLite(s.T())
	s.store = repository.NewStore(s.db)
	s.clock = testfixtures.NewClock(time.Time{})
	s.google = testfixtures.NewFakeCalendar(models.CalendarProviderGoogle)
	s.msft = testfixtures.NewFakeCalendar(models.CalendarProviderMicrosoft)
	s.notifier = testfixtures.NewFakeNotifier()
	s.sink = newRecordingSink()

	s.tasks = NewTaskService(TaskServiceDeps{
		Store:     s.store,
		Calendars: integrations.NewCalendarSet(s.google, s.msft),
		Notifier:  s.notifier,
		Sink:      s.sink,
		Now:       s.clock.Now,
	})
	s.admins = NewAdminService(s.store, s.clock.Now)
	s.tokens = auth.NewTokenService(testTokenConfig, s.clock.Now)
	s.auth = NewAuthService(s.store.Users(), s.tokens, "company.com", nil)

	s.admin = testfixtures.CreateUser(s.T(), s.db, "admin@company.com", "Admin", models.RoleAdmin)
	s.alice = testfixtures.CreateUser(s.T(), s.db, "alice@company.com", "Alice Manager", models.RoleEmployee)
	s.bob = testfixtures.CreateUser(s.T(), s.db, "bob@company.com", "Bob Builder", models.RoleEmployee)
}

func identity(user *models.User) *auth.Identity {
	id := auth.IdentityOf(user)
	return &id
}

func (s *serviceSuite) createTask(by, to *models.User, deadline time.Time) *models.Task {
	result, err := s.tasks.CreateTask(s.ctx, identity(by), CreateTaskInput{
		Title:      "Prepare quarterly report",
		AssignedTo: to.ID,
		Deadline:   deadline,
	})
	s.Require().NoError(err)
	return result.Task
}

func (s *serviceSuite) reloadTask(id uint64) *models.Task {
	var task models.Task
	s.Require().NoError(s.db.First(&task, id).Error)
	return &task
}

func (s *serviceSuite) countRows(model interface{}) int64 {
	var count int64
	s.Require().NoError(s.db.Model(model).Count(&count).Error)
	return count
}

func effectNames(effects []SideEffect) map[string]bool {
	out := make(map[string]bool, len(effects))
	for _, e := range effects {
		out[e.Name] = e.Succeeded
	}
	return out
}

func TestSideEffectHelpers(t *testing.T) {
	effect := newSideEffect("email.assignment", testfixtures.ErrAdapterDown)
	if effect.Succeeded || effect.Error != testfixtures.ErrAdapterDown.Error() {
		t.Fatalf("unexpected effect %+v", effect)
	}
}
