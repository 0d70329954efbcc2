// internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/keshon/datastore"

	"github.com/dooberhut/dooberhut-bot/internal/reminder"
)

const commandHistoryLimit int = 20

// guildIndexKey tracks which guild IDs hold records, since the
// underlying store only supports point lookups.
const guildIndexKey = "_guilds"

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything persisted for one guild.
type Record struct {
	Reminder            *reminder.Config       `json:"reminder,omitempty"`
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history,omitempty"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord round-trips the stored value through JSON
// since the datastore hands back map[string]any after a reload.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{}
		s.ds.Add(guildID, newRecord)
		s.indexGuild(guildID)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	err = json.Unmarshal(jsonData, &record)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

func (s *Storage) indexGuild(guildID string) {
	ids := s.guildIDs()
	for _, id := range ids {
		if id == guildID {
			return
		}
	}
	ids = append(ids, guildID)
	sort.Strings(ids)
	s.ds.Add(guildIndexKey, ids)
}

func (s *Storage) guildIDs() []string {
	data, exists := s.ds.Get(guildIndexKey)
	if !exists {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

// GetReminderConfig returns the guild's reminder config, creating a
// default (unsaved) one on first access.
func (s *Storage) GetReminderConfig(guildID string) (*reminder.Config, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	if record.Reminder == nil {
		return reminder.NewConfig(), nil
	}
	return record.Reminder, nil
}

// SetConfig stores the guild's reminder config and flushes to disk
// synchronously, so a fire or a mutation survives an ordinary restart.
func (s *Storage) SetConfig(guildID string, cfg *reminder.Config) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.Reminder = cfg
	s.ds.Add(guildID, record)
	return s.ds.SaveToFile()
}

// AllConfigs returns an independent snapshot of every guild's reminder
// config for one scheduler tick. An unreadable guild record is skipped
// so one bad entry cannot take down reminders for every other guild.
func (s *Storage) AllConfigs() (map[string]*reminder.Config, error) {
	out := make(map[string]*reminder.Config)
	for _, guildID := range s.guildIDs() {
		record, err := s.getOrCreateGuildRecord(guildID)
		if err != nil {
			log.Printf("[WARN] [Storage] Skipping unreadable record for guild %s: %v", guildID, err)
			continue
		}
		if record.Reminder != nil {
			out[guildID] = record.Reminder
		}
	}
	return out, nil
}

// AppendCommandToHistory appends a command history record for a guild.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}
