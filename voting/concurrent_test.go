// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sharpsighted/ripped-or-stamped/models"
	"github.com/sharpsighted/ripped-or-stamped/testutil"
)

// TestConcurrentDuplicateVotes verifies that when one user fires many
// simultaneous votes, exactly one ballot lands and the count moves by one.
func TestConcurrentDuplicateVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusPaperVoting)
	p1 := testutil.AddTestPaper(t, db, epID, 1, "Budget Sketch")
	testutil.AddTestPaper(t, db, epID, 2, "Archive Cotton")

	numAttempts := 10
	var successCount, duplicateCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, _, err := CastPaperVote(db, epID, "racer", p1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ErrDuplicateVote):
				duplicateCount.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful vote, got %d", successCount.Load())
	}
	if duplicateCount.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d duplicate rejections, got %d", numAttempts-1, duplicateCount.Load())
	}

	var ballots, voteCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ballot WHERE episode_id = $1 AND user_id = 'racer'`, epID).Scan(&ballots); err != nil {
		t.Fatal(err)
	}
	if ballots != 1 {
		t.Errorf("Expected 1 ballot in database, got %d", ballots)
	}
	if err := db.QueryRow(`SELECT vote_count FROM paper WHERE id = $1`, p1).Scan(&voteCount); err != nil {
		t.Fatal(err)
	}
	if voteCount != 1 {
		t.Errorf("Expected vote count 1, got %d", voteCount)
	}

	// Lifetime counter moved exactly once
	lifetime, _ := UserBallotsCast(db, "racer")
	if lifetime != 1 {
		t.Errorf("Expected 1 lifetime ballot, got %d", lifetime)
	}
}

// TestConcurrentDistinctVoters verifies that simultaneous votes from
// different users all land and every increment is counted.
func TestConcurrentDistinctVoters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusPaperVoting)
	p1 := testutil.AddTestPaper(t, db, epID, 1, "Budget Sketch")
	p2 := testutil.AddTestPaper(t, db, epID, 2, "Archive Cotton")

	numVoters := 12
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			paperID := p1
			if idx%2 == 1 {
				paperID = p2
			}
			if _, _, err := CastPaperVote(db, epID, fmt.Sprintf("voter-%d", idx), paperID); err != nil {
				t.Errorf("Voter %d failed: %v", idx, err)
			}
		}(i)
	}
	wg.Wait()

	var total int
	if err := db.QueryRow(`SELECT SUM(vote_count) FROM paper WHERE episode_id = $1`, epID).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != numVoters {
		t.Errorf("Expected %d total votes, got %d (lost increments)", numVoters, total)
	}

	var ballots int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ballot WHERE episode_id = $1`, epID).Scan(&ballots); err != nil {
		t.Fatal(err)
	}
	if ballots != numVoters {
		t.Errorf("Expected %d ballots, got %d", numVoters, ballots)
	}
}

// TestConcurrentRidiculousCap verifies that simultaneous submissions never
// overshoot the cap and that intake ends up locked.
func TestConcurrentRidiculousCap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusChallengesVoting)
	testutil.EnableRidiculous(t, db, epID)

	numAttempts := models.RidiculousSubmissionCap * 3
	var successCount, closedCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			_, _, _, err := AddRidiculousOption(db, epID,
				fmt.Sprintf("Submission %d", idx), fmt.Sprintf("user-%d", idx), "Tester")
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ErrSubmissionsClosed):
				closedCount.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successCount.Load() != int32(models.RidiculousSubmissionCap) {
		t.Errorf("Expected exactly %d accepted submissions, got %d",
			models.RidiculousSubmissionCap, successCount.Load())
	}
	if successCount.Load()+closedCount.Load() != int32(numAttempts) {
		t.Errorf("Accepted + rejected should cover all attempts: %d + %d != %d",
			successCount.Load(), closedCount.Load(), numAttempts)
	}

	var count int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM challenge_option
		WHERE episode_id = $1 AND category = 'ridiculous'
	`, epID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != models.RidiculousSubmissionCap {
		t.Errorf("Expected exactly %d rows, got %d", models.RidiculousSubmissionCap, count)
	}

	var locked bool
	if err := db.QueryRow(`SELECT ridiculous_locked FROM episode WHERE id = $1`, epID).Scan(&locked); err != nil {
		t.Fatal(err)
	}
	if !locked {
		t.Error("Expected intake to be locked")
	}
}

// TestConcurrentCloseAndVote verifies that a close racing with votes leaves
// the tallies and the recorded winner consistent: every vote either counted
// before the tally or was rejected with a phase error.
func TestConcurrentCloseAndVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	admin := testutil.TestIdentity("admin-1", models.RoleAdmin)
	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusPaperVoting)
	p1 := testutil.AddTestPaper(t, db, epID, 1, "Budget Sketch")
	testutil.AddTestPaper(t, db, epID, 2, "Archive Cotton")

	numVoters := 8
	var accepted, phaseRejected atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			_, _, err := CastPaperVote(db, epID, fmt.Sprintf("closer-voter-%d", idx), p1)
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrPhase):
				phaseRejected.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := ClosePaperVoting(db, epID, admin); err != nil && !errors.Is(err, ErrPhase) {
			t.Errorf("Unexpected close error: %v", err)
		}
	}()
	wg.Wait()

	if accepted.Load()+phaseRejected.Load() != int32(numVoters) {
		t.Errorf("Every vote should be accepted or phase-rejected: %d + %d != %d",
			accepted.Load(), phaseRejected.Load(), numVoters)
	}

	// Accepted ballots and the stored count must agree
	var ballots, voteCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ballot WHERE episode_id = $1`, epID).Scan(&ballots); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT vote_count FROM paper WHERE id = $1`, p1).Scan(&voteCount); err != nil {
		t.Fatal(err)
	}
	if ballots != int(accepted.Load()) || voteCount != int(accepted.Load()) {
		t.Errorf("Ballots (%d) and vote count (%d) should both equal accepted votes (%d)",
			ballots, voteCount, accepted.Load())
	}

	var status string
	if err := db.QueryRow(`SELECT status FROM episode WHERE id = $1`, epID).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != models.StatusChallengesVoting {
		t.Errorf("Expected episode in challenges_voting, got %s", status)
	}
}

// TestConcurrentDoubleClose verifies that racing closes advance the episode
// exactly once.
func TestConcurrentDoubleClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	admin := testutil.TestIdentity("admin-1", models.RoleAdmin)
	epID := testutil.CreateTestEpisode(t, db, 1, models.StatusPaperVoting)
	testutil.AddTestPaper(t, db, epID, 1, "Budget Sketch")
	testutil.AddTestPaper(t, db, epID, 2, "Archive Cotton")

	numAttempts := 4
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := ClosePaperVoting(db, epID, admin)
			if err == nil {
				successCount.Add(1)
			} else if !errors.Is(err, ErrPhase) {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful close, got %d", successCount.Load())
	}

	// Exactly one close was audited
	var auditCount int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM audit_log
		WHERE entity_id = $1 AND action = 'episode.close_paper_vote'
	`, epID).Scan(&auditCount)
	if err != nil {
		t.Fatal(err)
	}
	if auditCount != 1 {
		t.Errorf("Expected 1 close audit entry, got %d", auditCount)
	}
}
