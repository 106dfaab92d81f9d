package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column definitions for the SQLite backend, in the form ent's
// migration engine consumes.

const (
	tableAttempts = "attempts"
	tableSeen     = "seen_questions"

	colID             = "id"
	colIdentityKind   = "identity_kind"
	colIdentityID     = "identity_id"
	colStream         = "stream"
	colCatalogVersion = "catalog_version"
	colTotalQuestions = "total_questions"
	colQuestionIDs    = "question_ids"
	colAnswers        = "answers"
	colCurrentIndex   = "current_index"
	colStatus         = "status"
	colStartedAt      = "started_at"
	colPausedAt       = "paused_at"
	colCompletedAt    = "completed_at"
	colResult         = "result"
	colLastUpdateKey  = "last_update_key"
	colQuestionID     = "question_id"
	colSeenAt         = "seen_at"
)

var (
	attemptsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeString},
		{Name: colIdentityKind, Type: field.TypeString},
		{Name: colIdentityID, Type: field.TypeString},
		{Name: colStream, Type: field.TypeString},
		{Name: colCatalogVersion, Type: field.TypeString},
		{Name: colTotalQuestions, Type: field.TypeInt},
		{Name: colQuestionIDs, Type: field.TypeJSON},
		{Name: colAnswers, Type: field.TypeJSON},
		{Name: colCurrentIndex, Type: field.TypeInt},
		{Name: colStatus, Type: field.TypeString},
		{Name: colStartedAt, Type: field.TypeInt64},
		{Name: colPausedAt, Type: field.TypeInt64, Nullable: true},
		{Name: colCompletedAt, Type: field.TypeInt64, Nullable: true},
		{Name: colResult, Type: field.TypeJSON, Nullable: true},
		{Name: colLastUpdateKey, Type: field.TypeString, Default: ""},
	}
	attemptsTable = &schema.Table{
		Name:       tableAttempts,
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "attempt_identity_kind_identity_id_stream",
				Columns: []*schema.Column{attemptsColumns[1], attemptsColumns[2], attemptsColumns[3]},
			},
		},
	}

	seenColumns = []*schema.Column{
		{Name: colIdentityKind, Type: field.TypeString},
		{Name: colIdentityID, Type: field.TypeString},
		{Name: colStream, Type: field.TypeString},
		{Name: colQuestionID, Type: field.TypeString},
		{Name: colSeenAt, Type: field.TypeInt64},
	}
	seenTable = &schema.Table{
		Name:       tableSeen,
		Columns:    seenColumns,
		PrimaryKey: []*schema.Column{seenColumns[0], seenColumns[1], seenColumns[2], seenColumns[3]},
	}

	tables = []*schema.Table{attemptsTable, seenTable}
)
