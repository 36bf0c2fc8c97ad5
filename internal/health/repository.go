package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/redmonkez12/fitness-api/internal/database"
	"github.com/redmonkez12/fitness-api/internal/user"
)

// Repository persists profile, sleep and food data
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// SaveProfile writes the body data with its derived metrics and resets the intake counter
func (r *Repository) SaveProfile(ctx context.Context, userID uuid.UUID, in ProfileInput, m Metrics) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("gender = ?", in.Gender).
		Set("age = ?", in.Age).
		Set("activity = ?", in.Activity).
		Set("height = ?", in.Height).
		Set("weight = ?", in.Weight).
		Set("target_weight = ?", in.TargetWeight).
		Set("medical_conditions = ?", pgdialect.Array(in.MedicalCondition)).
		Set("intake = 0").
		Apply(setMetrics(m)).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return checkAffected(result)
}

// UpdateHealthData recomputes metrics without touching gender, conditions or intake
func (r *Repository) UpdateHealthData(ctx context.Context, userID uuid.UUID, in HealthDataInput, m Metrics) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("age = ?", in.Age).
		Set("activity = ?", in.Activity).
		Set("height = ?", in.Height).
		Set("weight = ?", in.Weight).
		Set("target_weight = ?", in.TargetWeight).
		Apply(setMetrics(m)).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update health data: %w", err)
	}
	return checkAffected(result)
}

// UpdateMeasurements overrides the present fields and returns the updated user
func (r *Repository) UpdateMeasurements(ctx context.Context, userID uuid.UUID, in MeasurementsInput) (*user.User, error) {
	dbUser := new(database.User)
	err := r.db.NewUpdate().
		Model(dbUser).
		Set("chest = COALESCE(?, chest)", in.Chest).
		Set("waist = COALESCE(?, waist)", in.Waist).
		Set("hips = COALESCE(?, hips)", in.Hips).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update measurements: %w", err)
	}

	return user.MapDBUser(dbUser), nil
}

// UpsertSleep stores the hours for one date, replacing any earlier value
func (r *Repository) UpsertSleep(ctx context.Context, userID uuid.UUID, date string, hours float64) error {
	entry := &database.SleepEntry{
		UserID: userID,
		Date:   date,
		Hours:  hours,
	}

	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (user_id, date) DO UPDATE").
		Set("hours = EXCLUDED.hours").
		Exec(ctx)
	if err != nil {
		if user.IsForeignKeyViolation(err) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to save sleep entry: %w", err)
	}
	return nil
}

// SleepByDates returns the stored hours keyed by date
func (r *Repository) SleepByDates(ctx context.Context, userID uuid.UUID, dates []string) (map[string]float64, error) {
	var rows []database.SleepEntry
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("date IN (?)", bun.In(dates)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sleep entries: %w", err)
	}

	hours := make(map[string]float64, len(rows))
	for _, row := range rows {
		hours[row.Date] = row.Hours
	}
	return hours, nil
}

// ListSleep returns every stored sleep entry for the user ordered by date
func (r *Repository) ListSleep(ctx context.Context, userID uuid.UUID) ([]SleepEntry, error) {
	var rows []database.SleepEntry
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep entries: %w", err)
	}

	entries := make([]SleepEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, SleepEntry{Date: row.Date, Hours: row.Hours})
	}
	return entries, nil
}

// LogFood inserts the food log and adds its calories to the intake counter in one transaction
func (r *Repository) LogFood(ctx context.Context, userID uuid.UUID, in FoodInput, at time.Time) error {
	row := &database.FoodLog{
		UserID:   userID,
		Name:     in.Name,
		Calories: in.Calories,
		Carbs:    in.Carbs,
		Proteins: in.Proteins,
		Fats:     in.Fats,
		MealType: in.MealType,
		LoggedAt: at,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*database.User)(nil)).
			Set("intake = intake + ?", roundInt(in.Calories)).
			Set("updated_at = NOW()").
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if err := checkAffected(result); err != nil {
			return err
		}

		_, err = tx.NewInsert().
			Model(row).
			Returning("id").
			Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to log food: %w", err)
	}
	return nil
}

// FoodSums are aggregated food log values
type FoodSums struct {
	Calories float64 `bun:"calories"`
	Carbs    float64 `bun:"carbs"`
	Proteins float64 `bun:"proteins"`
	Fats     float64 `bun:"fats"`
}

// SumFood totals the food logged in [from, to). An empty mealType matches every meal.
func (r *Repository) SumFood(ctx context.Context, userID uuid.UUID, mealType string, from, to time.Time) (FoodSums, error) {
	var sums FoodSums
	q := r.db.NewSelect().
		Model((*database.FoodLog)(nil)).
		ColumnExpr("COALESCE(SUM(calories), 0) AS calories").
		ColumnExpr("COALESCE(SUM(carbs), 0) AS carbs").
		ColumnExpr("COALESCE(SUM(proteins), 0) AS proteins").
		ColumnExpr("COALESCE(SUM(fats), 0) AS fats").
		Where("user_id = ?", userID).
		Where("logged_at >= ?", from).
		Where("logged_at < ?", to)
	if mealType != "" {
		q = q.Where("meal_type = ?", mealType)
	}

	if err := q.Scan(ctx, &sums); err != nil {
		return FoodSums{}, fmt.Errorf("failed to sum food logs: %w", err)
	}
	return sums, nil
}

func setMetrics(m Metrics) func(*bun.UpdateQuery) *bun.UpdateQuery {
	return func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("bmi = ?", m.BMI).
			Set("calorie_intake = ?", m.CalorieIntake).
			Set("macro_protein = ?", m.Macros.Protein).
			Set("macro_carbs = ?", m.Macros.Carbs).
			Set("macro_fats = ?", m.Macros.Fats).
			Set("macro_magnesium = ?", m.Macros.Magnesium).
			Set("macro_sodium = ?", m.Macros.Sodium).
			Set("estimated_time_to_target_weight = ?", m.EstimatedTimeToTargetWeight).
			Set("updated_at = NOW()")
	}
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}
