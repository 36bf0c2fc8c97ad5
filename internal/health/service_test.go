package health

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/fitness-api/internal/logging"
	"github.com/redmonkez12/fitness-api/internal/user"
)

type foodRow struct {
	in FoodInput
	at time.Time
}

// memoryStore keeps one user's worth of health data per id
type memoryStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*user.User
	metrics map[uuid.UUID]Metrics
	sleep   map[uuid.UUID]map[string]float64
	food    map[uuid.UUID][]foodRow
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:   map[uuid.UUID]*user.User{},
		metrics: map[uuid.UUID]Metrics{},
		sleep:   map[uuid.UUID]map[string]float64{},
		food:    map[uuid.UUID][]foodRow{},
	}
}

func (m *memoryStore) addUser(name string) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &user.User{ID: uuid.New(), Name: name, Email: name + "@example.com", MedicalConditions: []string{}}
	m.users[u.ID] = u
	return u
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) SaveProfile(_ context.Context, id uuid.UUID, in ProfileInput, metrics Metrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Gender = &in.Gender
	u.MedicalConditions = in.MedicalCondition
	u.Intake = 0
	m.metrics[id] = metrics
	return nil
}

func (m *memoryStore) UpdateHealthData(_ context.Context, id uuid.UUID, _ HealthDataInput, metrics Metrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	m.metrics[id] = metrics
	return nil
}

func (m *memoryStore) UpdateMeasurements(_ context.Context, id uuid.UUID, in MeasurementsInput) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if in.Chest != nil {
		u.Measurements.Chest = in.Chest
	}
	if in.Waist != nil {
		u.Measurements.Waist = in.Waist
	}
	if in.Hips != nil {
		u.Measurements.Hips = in.Hips
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) UpsertSleep(_ context.Context, id uuid.UUID, date string, hours float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	if m.sleep[id] == nil {
		m.sleep[id] = map[string]float64{}
	}
	m.sleep[id][date] = hours
	return nil
}

func (m *memoryStore) SleepByDates(_ context.Context, id uuid.UUID, dates []string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]float64{}
	for _, d := range dates {
		if h, ok := m.sleep[id][d]; ok {
			out[d] = h
		}
	}
	return out, nil
}

func (m *memoryStore) ListSleep(_ context.Context, id uuid.UUID) ([]SleepEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := []SleepEntry{}
	for d, h := range m.sleep[id] {
		entries = append(entries, SleepEntry{Date: d, Hours: h})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

func (m *memoryStore) LogFood(_ context.Context, id uuid.UUID, in FoodInput, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Intake += roundInt(in.Calories)
	m.food[id] = append(m.food[id], foodRow{in: in, at: at})
	return nil
}

func (m *memoryStore) SumFood(_ context.Context, id uuid.UUID, mealType string, from, to time.Time) (FoodSums, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sums FoodSums
	for _, row := range m.food[id] {
		if row.at.Before(from) || !row.at.Before(to) {
			continue
		}
		if mealType != "" && row.in.MealType != mealType {
			continue
		}
		sums.Calories += row.in.Calories
		sums.Carbs += row.in.Carbs
		sums.Proteins += row.in.Proteins
		sums.Fats += row.in.Fats
	}
	return sums, nil
}

func newTestService(t *testing.T, now time.Time, loc *time.Location) (*Service, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	svc := NewService(store, store, loc, logging.NewNopLogger())
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestService_SaveProfile(t *testing.T) {
	svc, store := newTestService(t, time.Now(), time.UTC)
	u := store.addUser("ann")
	store.users[u.ID].Intake = 900

	in := ProfileInput{Gender: "female", Age: 30, Activity: ActivitySedentary, Height: 175, Weight: 70, TargetWeight: 65}
	require.NoError(t, in.Validate())
	require.NoError(t, svc.SaveProfile(context.Background(), u.ID, in))

	assert.Equal(t, 1680, store.metrics[u.ID].CalorieIntake)
	assert.Equal(t, 22.9, store.metrics[u.ID].BMI)
	assert.Zero(t, store.users[u.ID].Intake)
	assert.Equal(t, []string{}, store.users[u.ID].MedicalConditions)

	err := svc.SaveProfile(context.Background(), uuid.New(), in)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_SleepWeek(t *testing.T) {
	now := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	svc, store := newTestService(t, now, time.UTC)
	u := store.addUser("ann")
	ctx := context.Background()

	require.NoError(t, svc.LogSleep(ctx, u.ID, SleepInput{Date: "2024-03-07", Hours: 8}))
	require.NoError(t, svc.LogSleep(ctx, u.ID, SleepInput{Date: "2024-03-03", Hours: 5}))
	// outside the window
	require.NoError(t, svc.LogSleep(ctx, u.ID, SleepInput{Date: "2024-02-28", Hours: 9}))

	week, err := svc.SleepWeek(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07"}, week.Last7Days)
	assert.Equal(t, []float64{6, 6, 5, 6, 6, 6, 8}, week.SleepHours)
}

func TestService_SleepWeek_UsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// already the 8th in UTC+10
	now := time.Date(2024, 3, 7, 20, 0, 0, 0, time.UTC)
	svc, store := newTestService(t, now, loc)
	u := store.addUser("ann")

	week, err := svc.SleepWeek(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", week.Last7Days[6])
	assert.Equal(t, "2024-03-02", week.Last7Days[0])
}

func TestService_SleepWeek_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t, time.Now(), time.UTC)

	_, err := svc.SleepWeek(context.Background(), uuid.New())
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_LogSleep_OverwritesOnlyMatchingDate(t *testing.T) {
	svc, store := newTestService(t, time.Now(), time.UTC)
	u := store.addUser("ann")
	ctx := context.Background()

	require.NoError(t, svc.LogSleep(ctx, u.ID, SleepInput{Date: "2024-03-01", Hours: 7}))
	require.NoError(t, svc.LogSleep(ctx, u.ID, SleepInput{Date: "2024-03-02", Hours: 6.5}))
	require.NoError(t, svc.LogSleep(ctx, u.ID, SleepInput{Date: "2024-03-01", Hours: 9}))

	p, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []SleepEntry{{Date: "2024-03-01", Hours: 9}, {Date: "2024-03-02", Hours: 6.5}}, p.SleepData)
}

func TestService_FoodTotals(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	svc, store := newTestService(t, now, time.UTC)
	u := store.addUser("ann")
	ctx := context.Background()

	require.NoError(t, svc.LogFood(ctx, u.ID, FoodInput{Name: "Oats", Calories: 300, Carbs: 50, Proteins: 10, Fats: 5, MealType: "breakfast"}))
	require.NoError(t, svc.LogFood(ctx, u.ID, FoodInput{Name: "Egg", Calories: 78.4, Proteins: 6, Fats: 5, MealType: "breakfast"}))
	require.NoError(t, svc.LogFood(ctx, u.ID, FoodInput{Name: "Rice", Calories: 200, Carbs: 45, MealType: "lunch"}))
	// yesterday
	store.food[u.ID] = append(store.food[u.ID], foodRow{in: FoodInput{Calories: 1000, MealType: "breakfast"}, at: now.AddDate(0, 0, -1)})

	total, err := svc.DailyCalories(ctx, u.ID)
	require.NoError(t, err)
	assert.InDelta(t, 578.4, total, 0.001)
	assert.Equal(t, 578, store.users[u.ID].Intake)

	totals, err := svc.MealTotals(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "breakfast", totals.MealType)
	assert.InDelta(t, 378.4, totals.TotalCalories, 0.001)
	assert.Equal(t, 50.0, totals.TotalCarbs)
	assert.Equal(t, 16.0, totals.TotalProteins)
	assert.Equal(t, 10.0, totals.TotalFats)

	totals, err = svc.MealTotals(ctx, u.ID, "dinner")
	require.NoError(t, err)
	assert.Zero(t, totals.TotalCalories)
}

func TestService_Profile(t *testing.T) {
	svc, store := newTestService(t, time.Now(), time.UTC)
	u := store.addUser("ann")

	p, err := svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, []SleepEntry{}, p.SleepData)

	_, err = svc.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, user.ErrNotFound)
}
