package engagement

import "time"

const (
	MinScore = 0
	MaxScore = 100

	PeerRatingsExpected = 4
	SelfRatingExpected  = 1
)

// Rating is one employee's engagement score for another (or themselves) in a week.
// At most one Rating exists per (WeekKey, EvaluatorID, EvaluatedID).
type Rating struct {
	ID          string    `json:"id"`
	WeekKey     string    `json:"weekKey"`
	EvaluatorID int       `json:"evaluatorId"`
	EvaluatedID int       `json:"evaluatedId"`
	Score       int       `json:"score"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Key struct {
	WeekKey     string
	EvaluatorID int
	EvaluatedID int
}

func (r Rating) Key() Key {
	return Key{WeekKey: r.WeekKey, EvaluatorID: r.EvaluatorID, EvaluatedID: r.EvaluatedID}
}

// Summary is derived per employee per week and never persisted.
type Summary struct {
	EmployeeID      int     `json:"employeeId"`
	EmployeeName    string  `json:"employeeName"`
	AverageScore    float64 `json:"averageScore"`
	RatingsReceived int     `json:"ratingsReceived"`
	ExpectedRatings int     `json:"expectedRatings"`
	RatingsMissing  int     `json:"ratingsMissing"`
}

type WeekReport struct {
	WeekKey       string    `json:"weekKey"`
	Summaries     []Summary `json:"summaries"`
	TotalExpected int       `json:"totalExpected"`
	TotalReceived int       `json:"totalReceived"`
	TotalMissing  int       `json:"totalMissing"`
	Error         string    `json:"error,omitempty"`
}

type ScoreInput struct {
	EvaluatedID int `json:"evaluatedId" validate:"required,gt=0"`
	Score       int `json:"score" validate:"min=0,max=100"`
}
