//go:build integration

package health_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/redmonkez12/fitness-api/internal/database"
	"github.com/redmonkez12/fitness-api/internal/health"
	"github.com/redmonkez12/fitness-api/internal/user"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "fitness_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/fitness_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_Postgres(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db.DB))

	users := user.NewRepository(db)
	repo := health.NewRepository(db)

	u, err := users.Create(ctx, "Jane", "jane@example.com", "hash")
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.Create(ctx, "Jane", "jane@example.com", "hash")
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	})

	t.Run("profile", func(t *testing.T) {
		in := health.ProfileInput{
			Gender:           "female",
			Age:              30,
			Activity:         health.ActivityModerate,
			Height:           170,
			Weight:           70,
			TargetWeight:     65,
			MedicalCondition: []string{"asthma"},
		}
		require.NoError(t, repo.SaveProfile(ctx, u.ID, in, health.ComputeMetrics(70, 170, health.ActivityModerate, 65)))

		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"asthma"}, got.MedicalConditions)
		require.NotNil(t, got.BMI)
		assert.InDelta(t, 24.2, *got.BMI, 0.1)
		assert.Zero(t, got.Intake)

		err = repo.SaveProfile(ctx, uuid.New(), in, health.Metrics{})
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("measurements keep unset fields", func(t *testing.T) {
		chest, waist := 95.0, 80.0
		_, err := repo.UpdateMeasurements(ctx, u.ID, health.MeasurementsInput{Chest: &chest, Waist: &waist})
		require.NoError(t, err)

		hips := 100.0
		got, err := repo.UpdateMeasurements(ctx, u.ID, health.MeasurementsInput{Hips: &hips})
		require.NoError(t, err)
		require.NotNil(t, got.Measurements.Chest)
		assert.Equal(t, 95.0, *got.Measurements.Chest)
		assert.Equal(t, 100.0, *got.Measurements.Hips)
	})

	t.Run("sleep upsert", func(t *testing.T) {
		require.NoError(t, repo.UpsertSleep(ctx, u.ID, "2024-03-01", 7))
		require.NoError(t, repo.UpsertSleep(ctx, u.ID, "2024-03-01", 8.5))
		require.NoError(t, repo.UpsertSleep(ctx, u.ID, "2024-03-02", 5))

		byDate, err := repo.SleepByDates(ctx, u.ID, []string{"2024-03-01", "2024-03-02", "2024-03-03"})
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"2024-03-01": 8.5, "2024-03-02": 5}, byDate)

		entries, err := repo.ListSleep(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		err = repo.UpsertSleep(ctx, uuid.New(), "2024-03-01", 7)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("food log and sums", func(t *testing.T) {
		at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, repo.LogFood(ctx, u.ID, health.FoodInput{Name: "Oats", Calories: 300.4, Carbs: 50, Proteins: 10, Fats: 5, MealType: "breakfast"}, at))
		require.NoError(t, repo.LogFood(ctx, u.ID, health.FoodInput{Name: "Salad", Calories: 277.6, Carbs: 20, Proteins: 5, Fats: 15, MealType: "lunch"}, at.Add(3*time.Hour)))

		from, to := at.Truncate(24*time.Hour), at.Truncate(24*time.Hour).Add(24*time.Hour)
		all, err := repo.SumFood(ctx, u.ID, "", from, to)
		require.NoError(t, err)
		assert.InDelta(t, 578.0, all.Calories, 0.001)

		breakfast, err := repo.SumFood(ctx, u.ID, "breakfast", from, to)
		require.NoError(t, err)
		assert.InDelta(t, 300.4, breakfast.Calories, 0.001)
		assert.InDelta(t, 50.0, breakfast.Carbs, 0.001)

		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 578, got.Intake)

		err = repo.LogFood(ctx, uuid.New(), health.FoodInput{Name: "Oats", Calories: 1, MealType: "breakfast"}, at)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}
