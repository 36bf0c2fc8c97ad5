package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON

	Gender            *string  `json:"gender,omitempty"`
	Age               *int     `json:"age,omitempty"`
	Activity          *string  `json:"activity,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	Weight            *float64 `json:"weight,omitempty"`
	TargetWeight      *float64 `json:"targetWeight,omitempty"`
	MedicalConditions []string `json:"medicalCondition"`

	BMI                         *float64 `json:"bmi,omitempty"`
	CalorieIntake               *int     `json:"calorieIntake,omitempty"`
	Macros                      *Macros  `json:"macros,omitempty"`
	EstimatedTimeToTargetWeight *string  `json:"estimatedTimeToTargetWeight,omitempty"`
	Intake                      int      `json:"intake"`

	Measurements Measurements `json:"measurements"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Macros struct {
	Protein   int     `json:"protein"`
	Carbs     int     `json:"carbs"`
	Fats      int     `json:"fats"`
	Magnesium float64 `json:"magnesium"`
	Sodium    float64 `json:"sodium"`
}

// Measurements are body circumferences in cm, null until first set
type Measurements struct {
	Chest *float64 `json:"chest"`
	Waist *float64 `json:"waist"`
	Hips  *float64 `json:"hips"`
}
