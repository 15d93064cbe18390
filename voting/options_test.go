// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"
	"strings"
	"testing"

	"github.com/sharpsighted/ripped-or-stamped/models"
	"github.com/sharpsighted/ripped-or-stamped/testutil"
)

func TestAddBenchmarkOption(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	admin := testutil.TestIdentity("admin-1", models.RoleAdmin)

	// Staging is allowed while paper voting is still open
	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusPaperVoting)

	id, err := AddBenchmarkOption(db, epID, &models.AddBenchmarkRequest{
		Name:        "Paint a storm",
		Description: "Capture motion in under an hour",
	}, admin)
	if err != nil {
		t.Fatalf("AddBenchmarkOption failed: %v", err)
	}
	if id == "" {
		t.Error("Expected an option ID")
	}

	ep, err := GetEpisodeByID(db, epID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ep.Options.Benchmarks) != 1 || ep.Options.Benchmarks[0].Name != "Paint a storm" {
		t.Errorf("Benchmark not staged: %+v", ep.Options.Benchmarks)
	}
}

func TestAddBenchmarkOptionValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	admin := testutil.TestIdentity("admin-1", models.RoleAdmin)
	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusPaperVoting)

	if _, err := AddBenchmarkOption(db, epID, &models.AddBenchmarkRequest{Description: "d"}, admin); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation without name, got %v", err)
	}
	if _, err := AddBenchmarkOption(db, epID, &models.AddBenchmarkRequest{Name: "n"}, admin); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation without description, got %v", err)
	}

	archived := testutil.CreateTestEpisode(t, db, 2, models.StatusArchived)
	_, err := AddBenchmarkOption(db, archived, &models.AddBenchmarkRequest{Name: "n", Description: "d"}, admin)
	if !errors.Is(err, ErrPhase) {
		t.Errorf("Expected ErrPhase on archived episode, got %v", err)
	}
}

func TestAddTrapOption(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	admin := testutil.TestIdentity("admin-1", models.RoleAdmin)
	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusChallengesVoting)

	id, err := AddTrapOption(db, epID, &models.AddTrapRequest{
		Name:        "Blind start",
		Description: "First ten minutes without looking",
		Trap:        "Blindfold for the opening wash",
		IsNightmare: true,
	}, admin)
	if err != nil {
		t.Fatalf("AddTrapOption failed: %v", err)
	}

	ep, err := GetEpisodeByID(db, epID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ep.Options.Traps) != 1 {
		t.Fatalf("Expected 1 trap, got %d", len(ep.Options.Traps))
	}
	trap := ep.Options.Traps[0]
	if trap.ID != id || !trap.IsNightmare || trap.Trap != "Blindfold for the opening wash" {
		t.Errorf("Trap not staged correctly: %+v", trap)
	}

	if _, err := AddTrapOption(db, epID, &models.AddTrapRequest{Name: "n", Description: "d"}, admin); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation without trap text, got %v", err)
	}
}

func TestAddRidiculousOption(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusChallengesVoting)
	testutil.EnableRidiculous(t, db, epID)

	opt, locked, count, err := AddRidiculousOption(db, epID, "  Paint with coffee  ", "user-1", "Casey")
	if err != nil {
		t.Fatalf("AddRidiculousOption failed: %v", err)
	}
	if opt.Text != "Paint with coffee" {
		t.Errorf("Expected trimmed text, got %q", opt.Text)
	}
	if locked {
		t.Error("Intake should not lock after one submission")
	}
	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}
	if opt.SubmittedByDisplayName != "Casey" {
		t.Errorf("Expected submitter name, got %q", opt.SubmittedByDisplayName)
	}
}

func TestAddRidiculousOptionValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusChallengesVoting)
	testutil.EnableRidiculous(t, db, epID)

	if _, _, _, err := AddRidiculousOption(db, epID, "   ", "user-1", "Casey"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for blank text, got %v", err)
	}

	long := strings.Repeat("x", models.RidiculousTextLimit+1)
	if _, _, _, err := AddRidiculousOption(db, epID, long, "user-1", "Casey"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for oversized text, got %v", err)
	}

	// Exactly at the limit is fine
	exact := strings.Repeat("y", models.RidiculousTextLimit)
	if _, _, _, err := AddRidiculousOption(db, epID, exact, "user-1", "Casey"); err != nil {
		t.Errorf("Expected text at limit to be accepted, got %v", err)
	}

	// Not enabled
	plain := testutil.CreateTestEpisode(t, db, 2, models.StatusChallengesVoting)
	if _, _, _, err := AddRidiculousOption(db, plain, "hi", "user-1", "Casey"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation when not enabled, got %v", err)
	}

	// Wrong phase
	early := testutil.CreateTestEpisode(t, db, 3, models.StatusPaperVoting)
	testutil.EnableRidiculous(t, db, early)
	if _, _, _, err := AddRidiculousOption(db, early, "hi", "user-1", "Casey"); !errors.Is(err, ErrPhase) {
		t.Errorf("Expected ErrPhase during paper voting, got %v", err)
	}
}

func TestAddRidiculousOptionCap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusChallengesVoting)
	testutil.EnableRidiculous(t, db, epID)

	var lastLocked bool
	for i := 0; i < models.RidiculousSubmissionCap; i++ {
		_, locked, count, err := AddRidiculousOption(db, epID, "Submission "+string(rune('A'+i)), "user-1", "Casey")
		if err != nil {
			t.Fatalf("Submission %d failed: %v", i+1, err)
		}
		if count != i+1 {
			t.Errorf("Expected count %d, got %d", i+1, count)
		}
		lastLocked = locked
	}

	if !lastLocked {
		t.Error("Expected the cap-filling submission to lock intake")
	}

	// Episode flag is persisted
	ep, err := GetEpisodeByID(db, epID)
	if err != nil {
		t.Fatal(err)
	}
	if !ep.RidiculousSubmissionsLocked {
		t.Error("Expected ridiculousSubmissionsLocked on the episode")
	}

	// Further submissions bounce
	if _, _, _, err := AddRidiculousOption(db, epID, "One more", "user-2", "Riley"); !errors.Is(err, ErrSubmissionsClosed) {
		t.Errorf("Expected ErrSubmissionsClosed past the cap, got %v", err)
	}

	var count int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM challenge_option
		WHERE episode_id = $1 AND category = 'ridiculous'
	`, epID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != models.RidiculousSubmissionCap {
		t.Errorf("Expected exactly %d submissions, got %d", models.RidiculousSubmissionCap, count)
	}
}
