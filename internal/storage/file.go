package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/yourname/smartcoach/internal"
)

type FileStorage struct {
	users      map[string]*internal.User               // id -> User
	tokenIndex map[string]string                       // token -> user id
	logs       map[string]*internal.NutritionLog       // id -> NutritionLog (without entries)
	entries    map[string]map[int64]*internal.DayEntry // log id -> day number -> DayEntry
	mu         sync.RWMutex
	usersFile  string
	logsFile   string
	entryFile  string
	saveUsers  chan struct{}
	saveLogs   chan struct{}
	saveEntry  chan struct{}
	shutdown   chan struct{}
	wg         sync.WaitGroup
	saveDelay  time.Duration
	logger     internal.Logger
	closeOnce  sync.Once
}

// NewFileStorage keeps everything in memory and mirrors it to users.json,
// logs.json and entries.json under dataDir. Writes are batched by
// background workers.
func NewFileStorage(dataDir string, logger internal.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	s := &FileStorage{
		users:      make(map[string]*internal.User),
		tokenIndex: make(map[string]string),
		logs:       make(map[string]*internal.NutritionLog),
		entries:    make(map[string]map[int64]*internal.DayEntry),
		usersFile:  filepath.Join(dataDir, "users.json"),
		logsFile:   filepath.Join(dataDir, "logs.json"),
		entryFile:  filepath.Join(dataDir, "entries.json"),
		saveUsers:  make(chan struct{}, 1),
		saveLogs:   make(chan struct{}, 1),
		saveEntry:  make(chan struct{}, 1),
		shutdown:   make(chan struct{}),
		saveDelay:  500 * time.Millisecond,
		logger:     logger,
	}

	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}
	if err := s.loadLogs(); err != nil {
		logger.Errorf("storage: failed to load logs: %v", err)
		return nil, err
	}
	if err := s.loadEntries(); err != nil {
		logger.Errorf("storage: failed to load day entries: %v", err)
		return nil, err
	}

	s.wg.Add(3)
	go s.saveWorker(s.saveUsers, s.writeUsers, "users")
	go s.saveWorker(s.saveLogs, s.writeLogs, "logs")
	go s.saveWorker(s.saveEntry, s.writeEntries, "day entries")

	return s, nil
}

// decodeFile reads a JSON array from path. Missing or empty files are fine.
func decodeFile(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *FileStorage) loadUsers() error {
	var users []*internal.User
	if err := decodeFile(s.usersFile, &users); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
		if u.Token != "" {
			s.tokenIndex[u.Token] = u.ID
		}
	}
	return nil
}

func (s *FileStorage) loadLogs() error {
	var logs []*internal.NutritionLog
	if err := decodeFile(s.logsFile, &logs); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range logs {
		l.DayEntries = nil
		s.logs[l.ID] = l
	}
	return nil
}

func (s *FileStorage) loadEntries() error {
	var entries []*internal.DayEntry
	if err := decodeFile(s.entryFile, &entries); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if s.entries[e.LogID] == nil {
			s.entries[e.LogID] = make(map[int64]*internal.DayEntry)
		}
		s.entries[e.LogID][e.ID] = e
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) writeUsers() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *FileStorage) writeLogs() error {
	s.mu.RLock()
	logs := make([]*internal.NutritionLog, 0, len(s.logs))
	for _, l := range s.logs {
		logs = append(logs, l)
	}
	s.mu.RUnlock()
	sort.Slice(logs, func(i, j int) bool { return logs[i].ID < logs[j].ID })
	return atomicWriteFileJSON(s.logsFile, logs)
}

func (s *FileStorage) writeEntries() error {
	s.mu.RLock()
	entries := make([]*internal.DayEntry, 0)
	for _, byDay := range s.entries {
		for _, e := range byDay {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LogID != entries[j].LogID {
			return entries[i].LogID < entries[j].LogID
		}
		return entries[i].ID < entries[j].ID
	})
	return atomicWriteFileJSON(s.entryFile, entries)
}

// saveWorker batches save requests so bursts of writes hit the disk once.
func (s *FileStorage) saveWorker(signal <-chan struct{}, save func() error, what string) {
	defer s.wg.Done()
	timer := time.NewTimer(s.saveDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdown:
			return
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Close stops the workers and writes everything synchronously.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdown)
		s.wg.Wait()
		err = errors.Join(s.writeUsers(), s.writeLogs(), s.writeEntries())
	})
	return err
}

// --- UserRepository ---
func (s *FileStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokenIndex[token]
	if !ok {
		return nil, fmt.Errorf("storage: user with token: %w", internal.ErrNotFound)
	}
	u := *s.users[id]
	return &u, nil
}

func (s *FileStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("storage: user %s: %w", id, internal.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *FileStorage) SaveUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.users[user.ID]; ok && old.Token != user.Token {
		delete(s.tokenIndex, old.Token)
	}
	cp := *user
	s.users[user.ID] = &cp
	if user.Token != "" {
		s.tokenIndex[user.Token] = user.ID
	}
	notify(s.saveUsers)
	return nil
}

func (s *FileStorage) UpdateUser(ctx context.Context, id string, fn func(*internal.User) error) (*internal.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("storage: user %s: %w", id, internal.ErrNotFound)
	}
	cp := *old
	if cp.Profile != nil {
		profile := *cp.Profile
		cp.Profile = &profile
	}
	if err := fn(&cp); err != nil {
		return nil, err
	}
	cp.ID = id
	if old.Token != cp.Token {
		delete(s.tokenIndex, old.Token)
	}
	if cp.Token != "" {
		s.tokenIndex[cp.Token] = id
	}
	s.users[id] = &cp
	notify(s.saveUsers)
	out := cp
	return &out, nil
}

// --- NutritionLogRepository ---
func (s *FileStorage) SaveLog(ctx context.Context, log *internal.NutritionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *log
	cp.DayEntries = nil
	s.logs[log.ID] = &cp
	notify(s.saveLogs)
	return nil
}

func (s *FileStorage) GetLog(ctx context.Context, userID, logID string) (*internal.NutritionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.logs[logID]
	if !ok || l.UserID != userID {
		return nil, fmt.Errorf("storage: log %s: %w", logID, internal.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (s *FileStorage) ListLogs(ctx context.Context, userID string) ([]internal.NutritionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := []internal.NutritionLog{}
	for _, l := range s.logs {
		if l.UserID == userID {
			logs = append(logs, *l)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.Before(logs[j].CreatedAt)
	})
	return logs, nil
}

func (s *FileStorage) DeleteLog(ctx context.Context, userID, logID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[logID]
	if !ok || l.UserID != userID {
		return fmt.Errorf("storage: log %s: %w", logID, internal.ErrNotFound)
	}
	delete(s.logs, logID)
	if _, ok := s.entries[logID]; ok {
		delete(s.entries, logID)
		notify(s.saveEntry)
	}
	notify(s.saveLogs)
	return nil
}

// --- DayEntryRepository ---
func (s *FileStorage) SaveDayEntry(ctx context.Context, entry *internal.DayEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[entry.LogID] == nil {
		s.entries[entry.LogID] = make(map[int64]*internal.DayEntry)
	}
	cp := *entry
	s.entries[entry.LogID][entry.ID] = &cp
	notify(s.saveEntry)
	return nil
}

func (s *FileStorage) ListDayEntries(ctx context.Context, logID string) ([]internal.DayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDay := s.entries[logID]
	entries := make([]internal.DayEntry, 0, len(byDay))
	for _, e := range byDay {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (s *FileStorage) DeleteDayEntry(ctx context.Context, logID string, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[logID][entryID]; !ok {
		return fmt.Errorf("storage: entry %d in log %s: %w", entryID, logID, internal.ErrNotFound)
	}
	delete(s.entries[logID], entryID)
	notify(s.saveEntry)
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
