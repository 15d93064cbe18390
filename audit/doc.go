// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit appends state-change records to the audit trail.

Record is fire-and-forget: a failed write logs a warning and returns
nothing, so the primary operation never fails or rolls back because the
trail could not be written.

	audit.Record(db, audit.Entry{
		Action:      "episode.close_paper_vote",
		ActorUserID: actorID,
		ActorRole:   actorRole,
		EntityType:  "episode",
		EntityID:    episodeID,
		Metadata:    map[string]any{"winningPaperId": winner.ID},
	})

ForEntity reads an entity's trail back, newest first, for the admin
dashboard.
*/
package audit
