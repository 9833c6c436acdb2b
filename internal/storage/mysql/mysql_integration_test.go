//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"trustharvest/internal/domain"
	mysqlrepo "trustharvest/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string { return &s }
func pint(i int) *int       { return &i }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=trustharvest",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "trustharvest")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.NewRepo(db)
	ctx := context.Background()

	pub1 := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	pub2 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	r1 := domain.Review{
		ID:            "rev-1",
		DisplayName:   pstr("Ana"),
		CountryCode:   pstr("DE"),
		Location:      pstr("Berlin"),
		Rating:        pint(5),
		Language:      pstr("en"),
		Text:          pstr("great service"),
		PublishedDate: &pub1,
	}
	r2 := domain.Review{
		ID:            "rev-2",
		DisplayName:   pstr("Bob"),
		CountryCode:   pstr("US"),
		Rating:        pint(2),
		Language:      pstr("en"),
		Text:          pstr("refund never arrived"),
		PublishedDate: &pub2,
	}
	if err := repo.UpsertReviews(ctx, "example.com", []domain.Review{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// Re-harvest: same id with an updated rating must overwrite, not duplicate
	r1b := r1
	r1b.Rating = pint(4)
	if err := repo.UpsertReviews(ctx, "example.com", []domain.Review{r1b}); err != nil {
		t.Fatalf("UpsertReviews (again): %v", err)
	}

	got, err := repo.ListReviews(ctx, "example.com", 10)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 reviews, got %d", len(got))
	}
	// newest published first
	if got[0].ID != "rev-1" || got[1].ID != "rev-2" {
		t.Fatalf("order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Rating == nil || *got[0].Rating != 4 {
		t.Fatalf("upsert must overwrite rating, got %v", got[0].Rating)
	}

	sums, err := repo.LocationSummary(ctx, "example.com")
	if err != nil {
		t.Fatalf("LocationSummary: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("want 2 buckets, got %+v", sums)
	}
	for _, s := range sums {
		switch s.Location {
		case "Berlin":
			if s.Count != 1 || s.MeanRating != 4.0 {
				t.Fatalf("Berlin bucket: %+v", s)
			}
		case "US": // no location, country code steps in
			if s.Count != 1 || s.MeanRating != 2.0 {
				t.Fatalf("US bucket: %+v", s)
			}
		default:
			t.Fatalf("unexpected bucket %+v", s)
		}
	}

	run := domain.HarvestRun{
		Domain:     "example.com",
		Pages:      2,
		Reviews:    2,
		Terminated: "end_of_data",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}
	if err := repo.LogRun(ctx, run); err != nil {
		t.Fatalf("LogRun: %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM harvest_runs WHERE site = ?", "example.com").Scan(&n); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 run row, got %d", n)
	}

	// unknown site surfaces the sentinel
	if _, err := repo.ListReviews(ctx, "nobody.example", 10); err != domain.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
