// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the episode lifecycle and ballot operations for
the show.

# Episode Lifecycle

Episodes move through a one-way state machine:

	paper_voting -> challenges_voting -> closed

with archived reachable from any state. ClosePaperVoting and
CloseChallengesVoting tally the finished phase, record winners, and advance
the status in a single transaction that locks the episode row, so a close
and in-flight ballots serialize cleanly.

# Ballots

Each user gets one ballot per episode per phase, enforced by a unique
constraint on (episode_id, user_id, phase) rather than a read-then-write
check. CastPaperVote and CastChallengesVote insert the ballot and increment
the selected options' counts in one transaction; on conflict the whole
transaction rolls back and ErrDuplicateVote is returned.

# Winner Rule

The winner of every tally is the option with the highest count; ties go to
the earliest option in stored order, so re-running a close over the same
data always picks the same winner.

# Ridiculous Submissions

Community-submitted ridiculous challenges are capped per episode.
AddRidiculousOption locks the episode row while counting, so concurrent
submissions cannot overshoot the cap; the submission that fills the final
slot also flips the intake lock.

All operations return wrapped sentinel errors (ErrNotFound, ErrPhase,
ErrDuplicateVote, ...) that callers match with errors.Is.
*/
package voting
