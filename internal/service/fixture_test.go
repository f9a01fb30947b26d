package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/mocks"
	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/service"
)

var (
	mainPage    = &models.Page{ID: 1, Namespace: 0, Title: "Main Page"}
	bobPage     = &models.Page{ID: 2, Namespace: models.NamespaceUser, Title: "Bob"}
	projectPage = &models.Page{ID: 3, Namespace: 4, Title: "Rules"}
	bobSubpage  = &models.Page{ID: 4, Namespace: models.NamespaceUser, Title: "Bob/Sandbox"}

	alice = &models.User{ID: 1, Name: "Alice"}
	bob   = &models.User{ID: 2, Name: "Bob"}
	carol = &models.User{ID: 3, Name: "Carol"}
)

type fixture struct {
	repos    *mocks.MockRepositories
	notifier *mocks.MockNotifier
	svcs     *service.Services
}

func testConfig() *config.Config {
	return &config.Config{
		Import: config.ImportConfig{
			WorkerConcurrency: 2,
			PollInterval:      10 * time.Millisecond,
			NoticeFlushSize:   1000,
			ExportFlushEvery:  100,
		},
		Comments: config.CommentsConfig{
			ContentNamespaces: []int{0},
			EnabledNamespaces: map[int]bool{models.NamespaceUser: true},
			MaxMentions:       10,
		},
	}
}

// newFixture wires the real services over mock repositories.
// Extra users are added on top of Alice, Bob and Carol.
func newFixture(t *testing.T, deps service.Dependencies, extraUsers ...*models.User) *fixture {
	t.Helper()
	users := append([]*models.User{alice, bob, carol}, extraUsers...)
	repos := mocks.NewMockRepositories(
		[]*models.Page{mainPage, bobPage, projectPage, bobSubpage},
		users,
	)
	notifier := mocks.NewMockNotifier()
	if deps.Notifier == nil {
		deps.Notifier = notifier
	}
	return &fixture{
		repos:    repos,
		notifier: notifier,
		svcs:     service.NewServices(repos.Repositories(), deps, testConfig(), zerolog.Nop()),
	}
}

// mentionUsers creates n users named U01, U02, ...
func mentionUsers(n int) []*models.User {
	users := make([]*models.User, n)
	for i := range users {
		users[i] = &models.User{ID: int64(100 + i), Name: fmt.Sprintf("U%02d", i+1)}
	}
	return users
}

func ptr[T any](v T) *T {
	return &v
}
