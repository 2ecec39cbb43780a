// Package redisdoc stores every record as a JSON document inside Redis hashes.
//
// Layout, for prefix p:
//
//	p:weeks              set of week keys that have ratings
//	p:ratings:<week>     hash  "<evaluator>:<evaluated>" -> rating JSON
//	p:weekly             hash  <week>  -> weekly metric JSON
//	p:monthly            hash  <month> -> monthly metric JSON
package redisdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
)

const maxTxRetries = 5

var errTxConflict = errors.New("redisdoc: concurrent update, retries exhausted")

type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "salesboard"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func ratingField(evaluatorID, evaluatedID int) string {
	return fmt.Sprintf("%d:%d", evaluatorID, evaluatedID)
}

func (s *Store) ListRatings(ctx context.Context, weekKey string) ([]engagement.Rating, error) {
	values, err := s.client.HVals(ctx, s.key("ratings", weekKey)).Result()
	if err != nil {
		return nil, err
	}
	ratings := make([]engagement.Rating, 0, len(values))
	for _, raw := range values {
		var r engagement.Rating
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].EvaluatedID != ratings[j].EvaluatedID {
			return ratings[i].EvaluatedID < ratings[j].EvaluatedID
		}
		return ratings[i].EvaluatorID < ratings[j].EvaluatorID
	})
	return ratings, nil
}

func (s *Store) AllRatings(ctx context.Context) ([]engagement.Rating, error) {
	weeks, err := s.client.SMembers(ctx, s.key("weeks")).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(weeks)
	all := []engagement.Rating{}
	for _, week := range weeks {
		ratings, err := s.ListRatings(ctx, week)
		if err != nil {
			return nil, err
		}
		all = append(all, ratings...)
	}
	return all, nil
}

func (s *Store) SaveRating(ctx context.Context, rating engagement.Rating) (engagement.Rating, error) {
	hashKey := s.key("ratings", rating.WeekKey)
	field := ratingField(rating.EvaluatorID, rating.EvaluatedID)

	var saved engagement.Rating
	err := s.upsert(ctx, hashKey, field, func(existing []byte) ([]byte, error) {
		saved = rating
		saved.ID = uuid.NewString()
		if existing != nil {
			var prev engagement.Rating
			if err := json.Unmarshal(existing, &prev); err != nil {
				return nil, fmt.Errorf("decode rating: %w", err)
			}
			saved.ID = prev.ID
		}
		return json.Marshal(saved)
	}, func(pipe redis.Pipeliner) {
		pipe.SAdd(ctx, s.key("weeks"), rating.WeekKey)
	})
	if err != nil {
		return engagement.Rating{}, err
	}
	return saved, nil
}

func (s *Store) ListWeeklyMetrics(ctx context.Context) ([]metrics.WeeklyMetric, error) {
	values, err := s.client.HVals(ctx, s.key("weekly")).Result()
	if err != nil {
		return nil, err
	}
	list := make([]metrics.WeeklyMetric, 0, len(values))
	for _, raw := range values {
		var m metrics.WeeklyMetric
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decode weekly metric: %w", err)
		}
		list = append(list, m)
	}
	metrics.SortWeekly(list)
	return list, nil
}

func (s *Store) SaveWeeklyMetric(ctx context.Context, m metrics.WeeklyMetric) (metrics.WeeklyMetric, error) {
	saved := m
	err := s.upsert(ctx, s.key("weekly"), m.WeekKey, func(existing []byte) ([]byte, error) {
		saved = m
		saved.ID = uuid.NewString()
		if existing != nil {
			var prev metrics.WeeklyMetric
			if err := json.Unmarshal(existing, &prev); err != nil {
				return nil, fmt.Errorf("decode weekly metric: %w", err)
			}
			saved.ID = prev.ID
		}
		return json.Marshal(saved)
	}, nil)
	if err != nil {
		return metrics.WeeklyMetric{}, err
	}
	return saved, nil
}

func (s *Store) ListMonthlyMetrics(ctx context.Context) ([]metrics.MonthlyMetric, error) {
	values, err := s.client.HVals(ctx, s.key("monthly")).Result()
	if err != nil {
		return nil, err
	}
	list := make([]metrics.MonthlyMetric, 0, len(values))
	for _, raw := range values {
		var m metrics.MonthlyMetric
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decode monthly metric: %w", err)
		}
		list = append(list, m)
	}
	metrics.SortMonthly(list)
	return list, nil
}

func (s *Store) SaveMonthlyMetric(ctx context.Context, m metrics.MonthlyMetric) (metrics.MonthlyMetric, error) {
	saved := m
	err := s.upsert(ctx, s.key("monthly"), m.MonthKey, func(existing []byte) ([]byte, error) {
		saved = m
		saved.ID = uuid.NewString()
		if existing != nil {
			var prev metrics.MonthlyMetric
			if err := json.Unmarshal(existing, &prev); err != nil {
				return nil, fmt.Errorf("decode monthly metric: %w", err)
			}
			saved.ID = prev.ID
		}
		return json.Marshal(saved)
	}, nil)
	if err != nil {
		return metrics.MonthlyMetric{}, err
	}
	return saved, nil
}

// upsert runs build against the current field value under WATCH and writes the
// result in a MULTI block. extra queues additional commands in the same block.
func (s *Store) upsert(ctx context.Context, hashKey, field string, build func(existing []byte) ([]byte, error), extra func(redis.Pipeliner)) error {
	txf := func(tx *redis.Tx) error {
		existing, err := tx.HGet(ctx, hashKey, field).Bytes()
		if errors.Is(err, redis.Nil) {
			existing = nil
		} else if err != nil {
			return err
		}
		doc, err := build(existing)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hashKey, field, doc)
			if extra != nil {
				extra(pipe)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, hashKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errTxConflict
}

// Reset deletes every key the store owns under its prefix.
func (s *Store) Reset(ctx context.Context) error {
	weeks, err := s.client.SMembers(ctx, s.key("weeks")).Result()
	if err != nil {
		return err
	}
	keys := []string{s.key("weeks"), s.key("weekly"), s.key("monthly")}
	for _, week := range weeks {
		keys = append(keys, s.key("ratings", week))
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
