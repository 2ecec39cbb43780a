package engagement

import "context"

type StoreAPI interface {
	ListRatings(ctx context.Context, weekKey string) ([]Rating, error)
	AllRatings(ctx context.Context) ([]Rating, error)
	SaveRating(ctx context.Context, rating Rating) (Rating, error)
}
