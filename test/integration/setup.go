//go:build integration
// +build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *sql.DB {
	ctx := context.Background()

	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17.7"),
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	applyMigrations(t, db)

	t.Cleanup(func() {
		db.Close()
		require.NoError(t, postgresContainer.Terminate(ctx))
	})

	return db
}

func applyMigrations(t *testing.T, db *sql.DB) {
	var migrationSQL []byte
	var err error

	paths := []string{
		filepath.Join("..", "..", "migrations", "000001_init.up.sql"),
		filepath.Join("migrations", "000001_init.up.sql"),
	}
	for _, path := range paths {
		migrationSQL, err = os.ReadFile(path)
		if err == nil {
			break
		}
	}
	require.NoError(t, err, "не удалось прочитать migrations/000001_init.up.sql")

	_, err = db.Exec(string(migrationSQL))
	require.NoError(t, err, "не удалось применить миграцию")
}

// seeder наполняет схему пользователями, правами и цепочками изменений
type seeder struct {
	t  *testing.T
	db *sql.DB
	// имя изменения -> ID
	ids map[string]domain.ChangeID
}

func newSeeder(t *testing.T, db *sql.DB) *seeder {
	return &seeder{t: t, db: db, ids: make(map[string]domain.ChangeID)}
}

func (s *seeder) exec(query string, args ...any) {
	s.t.Helper()
	_, err := s.db.Exec(query, args...)
	require.NoError(s.t, err)
}

func (s *seeder) user(id string, isAdmin bool, groups ...string) {
	s.t.Helper()
	s.exec("INSERT INTO users (id, name, is_admin) VALUES ($1, $2, $3)", id, id, isAdmin)
	for _, g := range groups {
		s.exec("INSERT INTO group_members (group_name, user_id) VALUES ($1, $2)", g, id)
	}
}

func (s *seeder) grant(project, group string) {
	s.t.Helper()
	s.exec("INSERT INTO project_access (project, group_name) VALUES ($1, $2) ON CONFLICT DO NOTHING", project, group)
}

type changeSeed struct {
	name    string
	topic   string
	private bool
}

// chain создает изменения проекта, каждое основано на коммите предыдущего
func (s *seeder) chain(project, owner string, seeds ...changeSeed) {
	s.t.Helper()

	parent := ""
	for _, seed := range seeds {
		commit := "commit-" + seed.name
		var id int64
		err := s.db.QueryRow(
			`INSERT INTO changes (project, branch, owner_id, status, topic, is_private, current_patch_set)
			 VALUES ($1, 'master', $2, 'NEW', NULLIF($3, ''), $4, 1) RETURNING id`,
			project, owner, seed.topic, seed.private,
		).Scan(&id)
		require.NoError(s.t, err)

		s.exec("INSERT INTO patch_sets (change_id, number, commit_id) VALUES ($1, 1, $2)", id, commit)
		if parent != "" {
			s.exec("INSERT INTO commit_parents (project, commit_id, parent_commit_id, position) VALUES ($1, $2, $3, 0)",
				project, commit, parent)
		}

		s.ids[seed.name] = domain.ChangeID(id)
		parent = commit
	}
}

func (s *seeder) id(name string) domain.ChangeID {
	s.t.Helper()
	id, ok := s.ids[name]
	require.True(s.t, ok, "unknown change %s", name)
	return id
}

func (s *seeder) names(ids []domain.ChangeID) []string {
	byID := make(map[domain.ChangeID]string, len(s.ids))
	for name, id := range s.ids {
		byID[id] = name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, byID[id])
	}
	return names
}

// topicScenario: R1: A->B(t2)->C, R2: D(t1)->E(t2)->F(t3), R3: G->H(t3)->J, R4: K->L(t1)->M
func topicScenario(t *testing.T, db *sql.DB) *seeder {
	s := newSeeder(t, db)
	s.user("owner", false)
	s.user("u1", false, "developers")
	for _, p := range []string{"R1", "R2", "R3", "R4"} {
		s.grant(p, "developers")
	}
	s.chain("R1", "owner", changeSeed{name: "A"}, changeSeed{name: "B", topic: "t2"}, changeSeed{name: "C"})
	s.chain("R2", "owner", changeSeed{name: "D", topic: "t1"}, changeSeed{name: "E", topic: "t2"}, changeSeed{name: "F", topic: "t3"})
	s.chain("R3", "owner", changeSeed{name: "G"}, changeSeed{name: "H", topic: "t3"}, changeSeed{name: "J"})
	s.chain("R4", "owner", changeSeed{name: "K"}, changeSeed{name: "L", topic: "t1"}, changeSeed{name: "M"})
	return s
}
