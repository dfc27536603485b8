package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/models"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

type userStoreStub struct {
	mu      sync.Mutex
	users   map[uint]models.User
	nextID  uint
	listErr error
}

func newUserStoreStub(users ...models.User) *userStoreStub {
	stub := &userStoreStub{users: make(map[uint]models.User), nextID: 1}
	for _, user := range users {
		if user.ID == 0 {
			user.ID = stub.nextID
		}
		if user.ID >= stub.nextID {
			stub.nextID = user.ID + 1
		}
		stub.users[user.ID] = user
	}
	return stub
}

func (stub *userStoreStub) FindByID(_ context.Context, userID uint) (models.User, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	return user, nil
}

func (stub *userStoreStub) LoadBaselineByID(ctx context.Context, userID uint) (models.User, error) {
	return stub.FindByID(ctx, userID)
}

func (stub *userStoreStub) FindByNormalizedEmail(_ context.Context, email string) (models.User, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	for _, user := range stub.users {
		if NormalizeEmail(user.Email) == email {
			return user, nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (stub *userStoreStub) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	_, err := stub.FindByNormalizedEmail(ctx, email)
	return err == nil, nil
}

func (stub *userStoreStub) Create(_ context.Context, user *models.User) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	user.ID = stub.nextID
	stub.nextID++
	stub.users[user.ID] = *user
	return nil
}

func (stub *userStoreStub) Save(_ context.Context, user *models.User) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	stub.users[user.ID] = *user
	return nil
}

func (stub *userStoreStub) UpdatePassword(_ context.Context, userID uint, passwordHash string, mustChangePassword bool) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	user, ok := stub.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.MustChangePassword = mustChangePassword
	stub.users[userID] = user
	return nil
}

func (stub *userStoreStub) DeleteAccountAndRelatedData(_ context.Context, userID uint) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if _, ok := stub.users[userID]; !ok {
		return db.ErrNotFound
	}
	delete(stub.users, userID)
	return nil
}

func (stub *userStoreStub) UpdateLastPeriodDate(_ context.Context, userID uint, value time.Time) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	user := stub.users[userID]
	user.LastPeriodDate = &value
	stub.users[userID] = user
	return nil
}

func (stub *userStoreStub) ListReminderRecipients(_ context.Context) ([]models.User, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.listErr != nil {
		return nil, stub.listErr
	}
	recipients := make([]models.User, 0)
	for _, user := range stub.users {
		if user.RemindersEnabled && user.LastPeriodDate != nil {
			recipients = append(recipients, user)
		}
	}
	sort.Slice(recipients, func(i, j int) bool { return recipients[i].ID < recipients[j].ID })
	return recipients, nil
}

type cycleStoreStub struct {
	mu      sync.Mutex
	entries []models.Cycle
	nextID  uint
}

func newCycleStoreStub(entries ...models.Cycle) *cycleStoreStub {
	stub := &cycleStoreStub{nextID: 1}
	for _, entry := range entries {
		entry.ID = stub.nextID
		stub.nextID++
		stub.entries = append(stub.entries, entry)
	}
	return stub
}

func (stub *cycleStoreStub) ListRecent(_ context.Context, userID uint, limit int) ([]models.Cycle, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	listed := make([]models.Cycle, 0)
	for _, entry := range stub.entries {
		if entry.UserID == userID && !entry.IsPredicted {
			listed = append(listed, entry)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].StartDate.After(listed[j].StartDate) })
	if limit > 0 && len(listed) > limit {
		listed = listed[:limit]
	}
	return listed, nil
}

func (stub *cycleStoreStub) ListOverlapping(_ context.Context, userID uint, from time.Time, to time.Time) ([]models.Cycle, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	listed := make([]models.Cycle, 0)
	for _, entry := range stub.entries {
		last := entry.StartDate
		if entry.EndDate != nil {
			last = *entry.EndDate
		}
		if entry.UserID == userID && !entry.IsPredicted && !entry.StartDate.After(to) && !last.Before(from) {
			listed = append(listed, entry)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].StartDate.Before(listed[j].StartDate) })
	return listed, nil
}

func (stub *cycleStoreStub) FindByID(_ context.Context, userID uint, cycleID uint) (models.Cycle, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	for _, entry := range stub.entries {
		if entry.UserID == userID && entry.ID == cycleID {
			return entry, nil
		}
	}
	return models.Cycle{}, db.ErrNotFound
}

func (stub *cycleStoreStub) ExistsWithStart(_ context.Context, userID uint, start time.Time) (bool, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	for _, entry := range stub.entries {
		if entry.UserID == userID && entry.StartDate.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

func (stub *cycleStoreStub) Create(_ context.Context, entry *models.Cycle) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	entry.ID = stub.nextID
	stub.nextID++
	stub.entries = append(stub.entries, *entry)
	return nil
}

func (stub *cycleStoreStub) UpdateEndDate(_ context.Context, userID uint, cycleID uint, end *time.Time) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	for index := range stub.entries {
		if stub.entries[index].UserID == userID && stub.entries[index].ID == cycleID {
			stub.entries[index].EndDate = end
			return nil
		}
	}
	return db.ErrNotFound
}

func (stub *cycleStoreStub) Delete(_ context.Context, userID uint, cycleID uint) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	for index := range stub.entries {
		if stub.entries[index].UserID == userID && stub.entries[index].ID == cycleID {
			stub.entries = append(stub.entries[:index], stub.entries[index+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

type journalStoreStub struct {
	mu       sync.Mutex
	symptoms []models.SymptomLog
	checkIns map[string]models.DailyCheckIn
	nextID   uint
}

func newJournalStoreStub() *journalStoreStub {
	return &journalStoreStub{checkIns: make(map[string]models.DailyCheckIn), nextID: 1}
}

func (stub *journalStoreStub) ListSymptomLogs(_ context.Context, userID uint, limit int) ([]models.SymptomLog, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	listed := make([]models.SymptomLog, 0)
	for _, entry := range stub.symptoms {
		if entry.UserID == userID {
			listed = append(listed, entry)
		}
	}
	if limit > 0 && len(listed) > limit {
		listed = listed[:limit]
	}
	return listed, nil
}

func (stub *journalStoreStub) CreateSymptomLog(_ context.Context, entry *models.SymptomLog) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	entry.ID = stub.nextID
	stub.nextID++
	stub.symptoms = append(stub.symptoms, *entry)
	return nil
}

func (stub *journalStoreStub) DeleteSymptomLog(_ context.Context, userID uint, logID uint) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	for index, entry := range stub.symptoms {
		if entry.UserID == userID && entry.ID == logID {
			stub.symptoms = append(stub.symptoms[:index], stub.symptoms[index+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (stub *journalStoreStub) ListCheckIns(_ context.Context, userID uint, limit int) ([]models.DailyCheckIn, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	listed := make([]models.DailyCheckIn, 0)
	for _, entry := range stub.checkIns {
		if entry.UserID == userID {
			listed = append(listed, entry)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].Date.After(listed[j].Date) })
	if limit > 0 && len(listed) > limit {
		listed = listed[:limit]
	}
	return listed, nil
}

func (stub *journalStoreStub) UpsertCheckIn(_ context.Context, entry *models.DailyCheckIn) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	key := entry.Date.Format("2006-01-02")
	if existing, ok := stub.checkIns[key]; ok && existing.UserID == entry.UserID {
		entry.ID = existing.ID
	} else {
		entry.ID = stub.nextID
		stub.nextID++
	}
	stub.checkIns[key] = *entry
	return nil
}

type sentNotification struct {
	chatID  string
	message string
}

type notifierStub struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (stub *notifierStub) Notify(_ context.Context, chatID string, message string) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.err != nil {
		return stub.err
	}
	stub.sent = append(stub.sent, sentNotification{chatID: chatID, message: message})
	return nil
}

func (stub *notifierStub) messages() []sentNotification {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	return append([]sentNotification(nil), stub.sent...)
}
