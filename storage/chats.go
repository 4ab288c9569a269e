// Package storage owns durable state: one JSON record per conversation
// id, and the sqlite run-history log of executed generated commands.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sgpt/model"
)

// TempChatID is the reserved scratch conversation. It is cleared at the
// start of any non-chat invocation so state never leaks between
// unrelated runs.
const TempChatID = "temp"

// ErrSessionCorrupt marks a conversation record that exists but cannot
// be decoded. It is scoped to that conversation id only; other
// conversations remain usable.
var ErrSessionCorrupt = errors.New("conversation record is corrupted")

type chatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type chatRecord struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []chatMessage `json:"messages"`
}

// ChatStorage persists ordered message transcripts, one file per
// conversation id. Conversations are single-writer per process, so each
// append is a full read-modify-write of the record.
type ChatStorage struct {
	chatsDir string
}

// NewChatStorage creates chat storage rooted at dataDir/chats
// (0700 - transcripts are user-only).
func NewChatStorage(dataDir string) (*ChatStorage, error) {
	chatsDir := filepath.Join(dataDir, "chats")

	if err := os.MkdirAll(chatsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create chats directory: %w", err)
	}

	return &ChatStorage{chatsDir: chatsDir}, nil
}

// Read returns the full transcript for a conversation id, in original
// order. A conversation that does not exist yields an empty transcript,
// not an error.
func (s *ChatStorage) Read(id string) ([]model.Message, error) {
	record, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	messages := make([]model.Message, len(record.Messages))
	for i, msg := range record.Messages {
		messages[i] = model.Message{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
	}
	return messages, nil
}

// Append adds messages to a conversation, creating it implicitly on
// first append. The record is replaced atomically (write to a temp file,
// then rename) so an interrupt never leaves a partial append behind.
func (s *ChatStorage) Append(id string, messages ...model.Message) error {
	record, err := s.load(id)
	if err != nil {
		return err
	}

	now := time.Now()
	if record == nil {
		record = &chatRecord{ID: id, CreatedAt: now}
	}
	record.UpdatedAt = now

	for _, msg := range messages {
		record.Messages = append(record.Messages, chatMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation %q: %w", id, err)
	}

	path := s.chatPath(id)
	tmp := path + ".tmp"
	// 0600 - transcripts contain prompts and completions
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation %q: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace conversation %q: %w", id, err)
	}

	return nil
}

// ListIDs returns all conversation ids ordered by last update, newest
// first.
func (s *ChatStorage) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.chatsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chats directory: %w", err)
	}

	type chatInfo struct {
		id      string
		updated time.Time
	}

	var chats []chatInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		chats = append(chats, chatInfo{
			id:      strings.TrimSuffix(entry.Name(), ".json"),
			updated: info.ModTime(),
		})
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].updated.After(chats[j].updated)
	})

	ids := make([]string, len(chats))
	for i, c := range chats {
		ids[i] = c.id
	}
	return ids, nil
}

// Delete removes a conversation. Deleting an absent conversation is not
// an error.
func (s *ChatStorage) Delete(id string) error {
	if err := os.Remove(s.chatPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete conversation %q: %w", id, err)
	}
	return nil
}

// ResetTemp clears the scratch conversation. Called at the start of any
// invocation that does not follow a named chat.
func (s *ChatStorage) ResetTemp() error {
	return s.Delete(TempChatID)
}

func (s *ChatStorage) load(id string) (*chatRecord, error) {
	data, err := os.ReadFile(s.chatPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read conversation %q: %w", id, err)
	}

	var record chatRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSessionCorrupt, id, err)
	}

	return &record, nil
}

func (s *ChatStorage) chatPath(id string) string {
	return filepath.Join(s.chatsDir, sanitizeID(id)+".json")
}

// sanitizeID keeps conversation ids usable as file names.
func sanitizeID(id string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-", " ", "-",
		"\n", "-", "\r", "-",
	)
	id = strings.Trim(replacer.Replace(id), "-.")
	if len(id) > 64 {
		id = id[:64]
	}
	if id == "" {
		id = "chat"
	}
	return id
}
