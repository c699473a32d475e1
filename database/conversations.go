package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "paper-agent/errors"
	"paper-agent/web/types"

	"github.com/lib/pq"
)

// TurnDelimiter separates utterances inside the stored text-turn log.
// The log is a single delimited string: even positions are user
// utterances, odd positions assistant replies.
const TurnDelimiter = "||"

// SplitTurnLog parses a stored turn log into its ordered utterances.
// An empty log yields no turns.
func SplitTurnLog(log string) []string {
	if strings.TrimSpace(log) == "" {
		return nil
	}
	parts := strings.Split(log, TurnDelimiter)
	turns := make([]string, 0, len(parts))
	for _, p := range parts {
		turns = append(turns, strings.TrimSpace(p))
	}
	return turns
}

// JoinTurnLog encodes ordered utterances back into the stored log form.
func JoinTurnLog(turns []string) string {
	return strings.Join(turns, TurnDelimiter)
}

// DedupeVoicePairs returns the pairs from incoming that are not already
// present in existing, comparing by exact content match. Order of the
// incoming pairs is preserved.
func DedupeVoicePairs(existing, incoming []types.VoicePair) []types.VoicePair {
	seen := make(map[types.VoicePair]struct{}, len(existing))
	for _, p := range existing {
		seen[p] = struct{}{}
	}
	var fresh []types.VoicePair
	for _, p := range incoming {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		fresh = append(fresh, p)
	}
	return fresh
}

// FetchConversation loads one conversation by chat id. When ownerEmail is
// non-empty the read is additionally scoped to that owner.
func (s *PostgresStore) FetchConversation(ctx context.Context, chatID, ownerEmail string) (*types.Conversation, error) {
	query := `
		SELECT chat_id, owner_email, text_turns, voice_turns, attached_document_refs,
		       COALESCE(generated_paper, ''), last_updated_at
		FROM conversations
		WHERE chat_id = $1 AND ($2 = '' OR owner_email = $2)
	`
	var conv types.Conversation
	var turnLog string
	var voiceJSON []byte
	var refs []string
	err := s.DB.QueryRowContext(ctx, query, chatID, ownerEmail).Scan(
		&conv.ChatID, &conv.OwnerEmail, &turnLog, &voiceJSON,
		pq.Array(&refs), &conv.GeneratedPaper, &conv.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("fetch conversation %s: %w", chatID, err)
	}

	conv.TextTurns = SplitTurnLog(turnLog)
	conv.DocumentRefs = refs
	if len(voiceJSON) > 0 {
		if err := json.Unmarshal(voiceJSON, &conv.VoiceTurns); err != nil {
			return nil, fmt.Errorf("decode voice turns for %s: %w", chatID, err)
		}
	}
	return &conv, nil
}

// AppendTextExchange appends one completed user/assistant exchange to the
// conversation's text-turn log, creating the row on first use. Both sides
// land in a single atomic upsert so the log's role alternation (even index
// user, odd index assistant) holds even when a later request fails partway.
func (s *PostgresStore) AppendTextExchange(ctx context.Context, chatID, ownerEmail, userUtterance, assistantUtterance string) error {
	exchange := userUtterance + TurnDelimiter + assistantUtterance
	query := `
		INSERT INTO conversations (chat_id, owner_email, text_turns, last_updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET text_turns = CASE WHEN conversations.text_turns = ''
		        THEN EXCLUDED.text_turns
		        ELSE conversations.text_turns || '` + TurnDelimiter + `' || EXCLUDED.text_turns END,
		    last_updated_at = NOW()
	`
	if _, err := s.DB.ExecContext(ctx, query, chatID, ownerEmail, exchange); err != nil {
		return fmt.Errorf("append text exchange to %s: %w", chatID, err)
	}
	return nil
}

// AppendVoiceTurns appends the previously-unseen pairs to the stored voice
// transcript and reports how many were actually added. The voice channel
// re-sends overlapping transcript deltas, so already-stored pairs are
// dropped by exact content match.
func (s *PostgresStore) AppendVoiceTurns(ctx context.Context, chatID string, pairs []types.VoicePair) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var voiceJSON []byte
	err = tx.QueryRowContext(ctx, `SELECT voice_turns FROM conversations WHERE chat_id = $1`, chatID).Scan(&voiceJSON)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read voice turns for %s: %w", chatID, err)
	}

	var existing []types.VoicePair
	if len(voiceJSON) > 0 {
		if err := json.Unmarshal(voiceJSON, &existing); err != nil {
			return 0, fmt.Errorf("decode voice turns for %s: %w", chatID, err)
		}
	}

	fresh := DedupeVoicePairs(existing, pairs)
	if len(fresh) == 0 {
		return 0, tx.Commit()
	}

	merged, err := json.Marshal(append(existing, fresh...))
	if err != nil {
		return 0, fmt.Errorf("encode voice turns for %s: %w", chatID, err)
	}

	query := `
		INSERT INTO conversations (chat_id, voice_turns, last_updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET voice_turns = EXCLUDED.voice_turns, last_updated_at = NOW()
	`
	if _, err := tx.ExecContext(ctx, query, chatID, merged); err != nil {
		return 0, fmt.Errorf("append voice turns to %s: %w", chatID, err)
	}
	return len(fresh), tx.Commit()
}

// FetchGeneratedPaper returns the stored paper text for one conversation,
// or an empty string when nothing has been generated yet.
func (s *PostgresStore) FetchGeneratedPaper(ctx context.Context, chatID string) (string, error) {
	var paper string
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(generated_paper, '') FROM conversations WHERE chat_id = $1`, chatID).Scan(&paper)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("fetch generated paper for %s: %w", chatID, err)
	}
	return paper, nil
}

// UpsertGeneratedPaper stores the synthesized paper text for the
// conversation, replacing any previous version. Last write wins.
func (s *PostgresStore) UpsertGeneratedPaper(ctx context.Context, chatID, text string) error {
	query := `
		INSERT INTO conversations (chat_id, generated_paper, last_updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET generated_paper = EXCLUDED.generated_paper, last_updated_at = NOW()
	`
	if _, err := s.DB.ExecContext(ctx, query, chatID, text); err != nil {
		return fmt.Errorf("upsert generated paper for %s: %w", chatID, err)
	}
	return nil
}

// AddDocumentRefs associates document URLs with the conversation,
// preserving attachment order and skipping URLs already present.
func (s *PostgresStore) AddDocumentRefs(ctx context.Context, chatID string, urls []string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing []string
	err = tx.QueryRowContext(ctx, `SELECT attached_document_refs FROM conversations WHERE chat_id = $1`, chatID).
		Scan(pq.Array(&existing))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read document refs for %s: %w", chatID, err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, ref := range existing {
		seen[ref] = struct{}{}
	}
	merged := existing
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		merged = append(merged, u)
	}

	query := `
		INSERT INTO conversations (chat_id, attached_document_refs, last_updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET attached_document_refs = EXCLUDED.attached_document_refs, last_updated_at = NOW()
	`
	if _, err := tx.ExecContext(ctx, query, chatID, pq.Array(merged)); err != nil {
		return fmt.Errorf("add document refs to %s: %w", chatID, err)
	}
	return tx.Commit()
}
