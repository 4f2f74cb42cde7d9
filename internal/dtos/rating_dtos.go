package dtos

// RateBrokerRequest submits one 1–5 score, optionally with text.
type RateBrokerRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type CommentPropertyRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Body   string `json:"body" validate:"max=1000"`
}

// AggregateResponse is the updated (average, count) pair after a
// submission.
type AggregateResponse struct {
	TargetID  string  `json:"target_id"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}
