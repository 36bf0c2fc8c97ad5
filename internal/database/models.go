package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row. Health columns stay NULL until the profile is saved.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`

	Gender            *string  `bun:"gender"`
	Age               *int     `bun:"age"`
	Activity          *string  `bun:"activity"`
	Height            *float64 `bun:"height"`
	Weight            *float64 `bun:"weight"`
	TargetWeight      *float64 `bun:"target_weight"`
	MedicalConditions []string `bun:"medical_conditions,array"`

	BMI                         *float64 `bun:"bmi"`
	CalorieIntake               *int     `bun:"calorie_intake"`
	Macros                      Macros   `bun:"embed:macro_"`
	EstimatedTimeToTargetWeight *string  `bun:"estimated_time_to_target_weight"`
	Intake                      int      `bun:"intake,notnull,default:0"`

	Chest *float64 `bun:"chest"`
	Waist *float64 `bun:"waist"`
	Hips  *float64 `bun:"hips"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Macros is embedded into users as macro_* columns
type Macros struct {
	Protein   *int     `bun:"protein"`
	Carbs     *int     `bun:"carbs"`
	Fats      *int     `bun:"fats"`
	Magnesium *float64 `bun:"magnesium"`
	Sodium    *float64 `bun:"sodium"`
}

type SleepEntry struct {
	bun.BaseModel `bun:"table:sleep_entries,alias:se"`

	UserID uuid.UUID `bun:"user_id,pk,type:uuid"`
	Date   string    `bun:"date,pk"` // YYYY-MM-DD
	Hours  float64   `bun:"hours,notnull"`
}

type FoodLog struct {
	bun.BaseModel `bun:"table:food_logs,alias:fl"`

	ID       int64     `bun:"id,pk,autoincrement"`
	UserID   uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Name     string    `bun:"name,notnull"`
	Calories float64   `bun:"calories,notnull"`
	Carbs    float64   `bun:"carbs,notnull"`
	Proteins float64   `bun:"proteins,notnull"`
	Fats     float64   `bun:"fats,notnull"`
	MealType string    `bun:"meal_type,notnull"`
	LoggedAt time.Time `bun:"logged_at,notnull,default:current_timestamp"`
}

type OTPChallenge struct {
	bun.BaseModel `bun:"table:otp_challenges,alias:oc"`

	ID         int64      `bun:"id,pk,autoincrement"`
	Email      string     `bun:"email,notnull"`
	Code       string     `bun:"code,notnull"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	ExpiresAt  time.Time  `bun:"expires_at,notnull"`
	VerifiedAt *time.Time `bun:"verified_at"`
}
