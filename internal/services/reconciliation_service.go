package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/repositories"
	"github.com/openestate/realty-service/internal/utils"
)

// aggregates within this epsilon of each other count as equal; the
// running average accumulates float noise over many submissions.
const aggregateEpsilon = 1e-9

// ReconciliationService recomputes every rating aggregate from the
// full history and repairs any drift in the incrementally maintained
// columns. Scheduled nightly; safe to run at any time since repairs
// go through the optimistic-locking update path.
type ReconciliationService struct {
	brokerRepo       repositories.BrokerRepository
	propRepo         repositories.PropertyRepository
	brokerRatingRepo repositories.BrokerRatingRepository
	commentRepo      repositories.PropertyCommentRepository
}

func NewReconciliationService(
	brokerRepo repositories.BrokerRepository,
	propRepo repositories.PropertyRepository,
	brokerRatingRepo repositories.BrokerRatingRepository,
	commentRepo repositories.PropertyCommentRepository,
) *ReconciliationService {
	return &ReconciliationService{
		brokerRepo:       brokerRepo,
		propRepo:         propRepo,
		brokerRatingRepo: brokerRatingRepo,
		commentRepo:      commentRepo,
	}
}

// Run reconciles both aggregate families and returns how many rows
// were repaired. Individual repair failures are logged and skipped so
// one contended row does not abort the whole sweep.
func (s *ReconciliationService) Run(ctx context.Context) (int, error) {
	start := time.Now()

	brokerFixes, err := s.reconcileBrokers(ctx)
	if err != nil {
		return brokerFixes, fmt.Errorf("broker aggregate reconciliation: %w", err)
	}

	propertyFixes, err := s.reconcileProperties(ctx)
	if err != nil {
		return brokerFixes + propertyFixes, fmt.Errorf("property aggregate reconciliation: %w", err)
	}

	total := brokerFixes + propertyFixes
	utils.Logger.Infof("Rating reconciliation finished in %s, repaired %d aggregates", time.Since(start).Round(time.Millisecond), total)
	return total, nil
}

func (s *ReconciliationService) reconcileBrokers(ctx context.Context) (int, error) {
	truth, err := s.brokerRatingRepo.AggregateAll(ctx)
	if err != nil {
		return 0, err
	}
	byID := aggregateIndex(truth)

	brokers, err := s.brokerRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, b := range brokers {
		want := byID[b.ID] // zero value means no ratings at all
		if aggregateMatches(b.AvgRating, b.RatingCount, want) {
			continue
		}

		utils.Logger.Warnf("Broker %s aggregate drifted: stored (%.4f, %d), recomputed (%.4f, %d)",
			b.ID, b.AvgRating, b.RatingCount, want.Avg, want.Count)

		err := s.brokerRepo.UpdateWithRetry(ctx, b.ID, func(br *models.Broker) error {
			br.AvgRating = want.Avg
			br.RatingCount = want.Count
			br.UpdatedAt = time.Now().UTC()
			return nil
		})
		if err != nil {
			utils.Logger.WithError(err).Errorf("Failed to repair broker %s aggregate", b.ID)
			continue
		}
		fixed++
	}
	return fixed, nil
}

func (s *ReconciliationService) reconcileProperties(ctx context.Context) (int, error) {
	truth, err := s.commentRepo.AggregateAll(ctx)
	if err != nil {
		return 0, err
	}
	byID := aggregateIndex(truth)

	props, err := s.propRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, p := range props {
		want := byID[p.ID]
		if aggregateMatches(p.AvgRating, p.ReviewCount, want) {
			continue
		}

		utils.Logger.Warnf("Property %s aggregate drifted: stored (%.4f, %d), recomputed (%.4f, %d)",
			p.ID, p.AvgRating, p.ReviewCount, want.Avg, want.Count)

		err := s.propRepo.UpdateWithRetry(ctx, p.ID, func(pr *models.Property) error {
			pr.AvgRating = want.Avg
			pr.ReviewCount = want.Count
			pr.UpdatedAt = time.Now().UTC()
			return nil
		})
		if err != nil {
			utils.Logger.WithError(err).Errorf("Failed to repair property %s aggregate", p.ID)
			continue
		}
		fixed++
	}
	return fixed, nil
}

func aggregateIndex(aggs []repositories.RatingAggregate) map[uuid.UUID]repositories.RatingAggregate {
	byID := make(map[uuid.UUID]repositories.RatingAggregate, len(aggs))
	for _, a := range aggs {
		byID[a.TargetID] = a
	}
	return byID
}

func aggregateMatches(avg float64, count int, want repositories.RatingAggregate) bool {
	if count != want.Count {
		return false
	}
	if want.Count == 0 {
		// no history: stored average must be exactly zero
		return avg == 0
	}
	return math.Abs(avg-want.Avg) < aggregateEpsilon
}
