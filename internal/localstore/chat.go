package localstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

const chatCols = `id, household_id, recipe_id, title, messages, created_at, updated_at`

func scanChatLog(scanner interface{ Scan(...any) error }) (*model.ChatLog, error) {
	var log model.ChatLog
	var recipeID sql.NullString
	var messages []byte

	err := scanner.Scan(
		&log.ID, &log.HouseholdID, &recipeID, &log.Title, &messages,
		&log.CreatedAt, &log.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recipeID.Valid {
		log.RecipeID = recipeID.String
	}
	if err := json.Unmarshal(messages, &log.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return &log, nil
}

func chatArgs(log model.ChatLog) ([]any, error) {
	messages, err := json.Marshal(log.Messages)
	if err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}
	var recipeID sql.NullString
	if log.RecipeID != "" {
		recipeID = sql.NullString{String: log.RecipeID, Valid: true}
	}
	return []any{
		log.ID, log.HouseholdID, recipeID, log.Title, messages,
		log.CreatedAt, log.UpdatedAt,
	}, nil
}

const upsertChatSQL = `INSERT INTO chat_logs (` + chatCols + `) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	household_id = excluded.household_id, recipe_id = excluded.recipe_id,
	title = excluded.title, messages = excluded.messages,
	created_at = excluded.created_at, updated_at = excluded.updated_at`

func (s *Store) GetChatLog(id string) (*model.ChatLog, error) {
	row := s.db.QueryRow(`SELECT `+chatCols+` FROM chat_logs WHERE id = ?`, id)
	log, err := scanChatLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get chat log", err)
	}
	return log, nil
}

func (s *Store) PutChatLog(log model.ChatLog) error {
	args, err := chatArgs(log)
	if err != nil {
		return storageErr("put chat log", err)
	}
	if _, err := s.db.Exec(upsertChatSQL, args...); err != nil {
		return storageErr("put chat log", err)
	}
	s.publish(EventPut, CollectionChatLogs, log.ID, log.HouseholdID)
	return nil
}

func (s *Store) BulkPutChatLogs(logs []model.ChatLog) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("bulk put chat logs", err)
	}
	defer tx.Rollback()

	for _, log := range logs {
		args, err := chatArgs(log)
		if err != nil {
			return storageErr("bulk put chat logs", err)
		}
		if _, err := tx.Exec(upsertChatSQL, args...); err != nil {
			return storageErr("bulk put chat logs", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("bulk put chat logs", err)
	}

	for _, log := range logs {
		s.publish(EventPut, CollectionChatLogs, log.ID, log.HouseholdID)
	}
	return nil
}

func (s *Store) DeleteChatLog(id string) error {
	var householdID string
	err := s.db.QueryRow(`SELECT household_id FROM chat_logs WHERE id = ?`, id).Scan(&householdID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return storageErr("delete chat log", err)
	}
	if _, err := s.db.Exec(`DELETE FROM chat_logs WHERE id = ?`, id); err != nil {
		return storageErr("delete chat log", err)
	}
	s.publish(EventDelete, CollectionChatLogs, id, householdID)
	return nil
}

func (s *Store) ListChatLogs(householdID string) ([]model.ChatLog, error) {
	return s.queryChatLogs(
		`SELECT `+chatCols+` FROM chat_logs WHERE household_id = ? ORDER BY updated_at DESC`,
		householdID,
	)
}

func (s *Store) ListChatLogsByRecipe(householdID, recipeID string) ([]model.ChatLog, error) {
	return s.queryChatLogs(
		`SELECT `+chatCols+` FROM chat_logs
		 WHERE household_id = ? AND recipe_id = ? ORDER BY updated_at DESC`,
		householdID, recipeID,
	)
}

func (s *Store) queryChatLogs(query string, args ...any) ([]model.ChatLog, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list chat logs", err)
	}
	defer rows.Close()

	var logs []model.ChatLog
	for rows.Next() {
		log, err := scanChatLog(rows)
		if err != nil {
			return nil, storageErr("scan chat log", err)
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}
